// Package skill answers voice-assistant requests by forwarding the spoken
// question to Gemini.
package skill

import (
	"context"
	"strings"

	"github.com/xpanvictor/verbale/internal/constants/prompts"
	"github.com/xpanvictor/verbale/pkg/Logger"
	"github.com/xpanvictor/verbale/pkg/assistant"
)

// Handler serves one kind of request. The first handler whose CanHandle
// returns true wins.
type Handler interface {
	CanHandle(req Request) bool
	Handle(ctx context.Context, env RequestEnvelope) (ResponseEnvelope, error)
}

type Service struct {
	handlers []Handler
	logger   *Logger.Logger
}

func NewService(answerer assistant.Answerer, logger *Logger.Logger) *Service {
	return &Service{
		handlers: []Handler{
			launchHandler{},
			helpHandler{},
			cancelOrStopHandler{},
			sessionEndedHandler{logger: logger},
			askHandler{answerer: answerer, logger: logger},
		},
		logger: logger,
	}
}

// Dispatch never fails: unhandled requests, handler errors and panics all
// produce the generic apology.
func (s *Service) Dispatch(ctx context.Context, env RequestEnvelope) (resp ResponseEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("skill handler panic on %s: %v", env.Request.Type, r)
			resp = Say(prompts.SkillUnexpected)
		}
	}()

	for _, h := range s.handlers {
		if !h.CanHandle(env.Request) {
			continue
		}
		out, err := h.Handle(ctx, env)
		if err != nil {
			s.logger.Errorf("skill request %s failed: %v", env.Request.RequestID, err)
			return Say(prompts.SkillUnexpected)
		}
		return out
	}

	s.logger.Errorf("no handler for request %s (%s)", env.Request.Type, intentName(env.Request))
	return Say(prompts.SkillUnexpected)
}

func intentName(r Request) string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.Name
}

type launchHandler struct{}

func (launchHandler) CanHandle(r Request) bool { return r.Type == LaunchRequest }

func (launchHandler) Handle(context.Context, RequestEnvelope) (ResponseEnvelope, error) {
	return Speak(prompts.SkillWelcome, prompts.SkillAskReprompt), nil
}

type helpHandler struct{}

func (helpHandler) CanHandle(r Request) bool { return r.IsIntent(HelpIntent) }

func (helpHandler) Handle(context.Context, RequestEnvelope) (ResponseEnvelope, error) {
	return Speak(prompts.SkillHelp, prompts.SkillAskReprompt), nil
}

type cancelOrStopHandler struct{}

func (cancelOrStopHandler) CanHandle(r Request) bool { return r.IsIntent(CancelIntent, StopIntent) }

func (cancelOrStopHandler) Handle(context.Context, RequestEnvelope) (ResponseEnvelope, error) {
	return Tell(prompts.SkillGoodbye), nil
}

type sessionEndedHandler struct{ logger *Logger.Logger }

func (sessionEndedHandler) CanHandle(r Request) bool { return r.Type == SessionEndedRequest }

func (h sessionEndedHandler) Handle(_ context.Context, env RequestEnvelope) (ResponseEnvelope, error) {
	h.logger.Infof("Session ended with reason: %s", env.Request.Reason)
	return Empty(), nil
}

type askHandler struct {
	answerer assistant.Answerer
	logger   *Logger.Logger
}

func (askHandler) CanHandle(r Request) bool { return r.IsIntent(AskIntent) }

func (h askHandler) Handle(ctx context.Context, env RequestEnvelope) (ResponseEnvelope, error) {
	prompt := strings.TrimSpace(env.Request.SlotValue(PromptSlot))
	if prompt == "" {
		return Say(prompts.SkillNotUnderstood), nil
	}

	answer, err := h.answerer.Answer(ctx, prompt)
	if err != nil {
		h.logger.Errorf("gemini call failed: %v", err)
		return Say(prompts.SkillModelError), nil
	}
	return Speak(answer, prompts.SkillFollowUp), nil
}
