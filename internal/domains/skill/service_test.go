package skill

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/xpanvictor/verbale/internal/constants/prompts"
	"github.com/xpanvictor/verbale/pkg/Logger"
)

type fakeAnswerer struct {
	answer string
	err    error
	panics bool
	got    []string
}

func (f *fakeAnswerer) Answer(_ context.Context, prompt string) (string, error) {
	if f.panics {
		panic("nil client")
	}
	f.got = append(f.got, prompt)
	return f.answer, f.err
}

func intent(name string, slots map[string]Slot) RequestEnvelope {
	return RequestEnvelope{Version: "1.0", Request: Request{
		Type:      IntentRequest,
		RequestID: "amzn1.echo-api.request.1",
		Intent:    &Intent{Name: name, Slots: slots},
	}}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name     string
		env      RequestEnvelope
		answerer *fakeAnswerer
		speech   string
		reprompt string
		end      *bool
		asked    string
	}{
		{
			name:     "launch",
			env:      RequestEnvelope{Request: Request{Type: LaunchRequest}},
			answerer: &fakeAnswerer{},
			speech:   prompts.SkillWelcome,
			reprompt: prompts.SkillAskReprompt,
			end:      ptr(false),
		},
		{
			name:     "ask with prompt",
			env:      intent(AskIntent, map[string]Slot{PromptSlot: {Name: PromptSlot, Value: "Che ore sono?"}}),
			answerer: &fakeAnswerer{answer: "Sono le dieci."},
			speech:   "Sono le dieci.",
			reprompt: prompts.SkillFollowUp,
			end:      ptr(false),
			asked:    "Che ore sono?",
		},
		{
			name:     "ask without prompt",
			env:      intent(AskIntent, nil),
			answerer: &fakeAnswerer{},
			speech:   prompts.SkillNotUnderstood,
		},
		{
			name:     "model error",
			env:      intent(AskIntent, map[string]Slot{PromptSlot: {Value: "Che ore sono?"}}),
			answerer: &fakeAnswerer{err: errors.New("quota exceeded")},
			speech:   prompts.SkillModelError,
			asked:    "Che ore sono?",
		},
		{
			name:     "help",
			env:      intent(HelpIntent, nil),
			answerer: &fakeAnswerer{},
			speech:   prompts.SkillHelp,
			reprompt: prompts.SkillAskReprompt,
			end:      ptr(false),
		},
		{
			name:     "stop",
			env:      intent(StopIntent, nil),
			answerer: &fakeAnswerer{},
			speech:   prompts.SkillGoodbye,
			end:      ptr(true),
		},
		{
			name:     "cancel",
			env:      intent(CancelIntent, nil),
			answerer: &fakeAnswerer{},
			speech:   prompts.SkillGoodbye,
			end:      ptr(true),
		},
		{
			name:     "unknown intent",
			env:      intent("AMAZON.FallbackIntent", nil),
			answerer: &fakeAnswerer{},
			speech:   prompts.SkillUnexpected,
		},
		{
			name:     "panic in answerer",
			env:      intent(AskIntent, map[string]Slot{PromptSlot: {Value: "ciao"}}),
			answerer: &fakeAnswerer{panics: true},
			speech:   prompts.SkillUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.answerer, Logger.From(zaptest.NewLogger(t)))
			resp := svc.Dispatch(context.Background(), tt.env)

			if resp.Version != "1.0" {
				t.Errorf("version = %q", resp.Version)
			}
			if resp.Response.OutputSpeech == nil || resp.Response.OutputSpeech.Text != tt.speech {
				t.Fatalf("speech = %+v, want %q", resp.Response.OutputSpeech, tt.speech)
			}
			gotReprompt := ""
			if resp.Response.Reprompt != nil {
				gotReprompt = resp.Response.Reprompt.OutputSpeech.Text
			}
			if gotReprompt != tt.reprompt {
				t.Errorf("reprompt = %q, want %q", gotReprompt, tt.reprompt)
			}
			if !equalPtr(resp.Response.ShouldEndSession, tt.end) {
				t.Errorf("shouldEndSession = %v, want %v", resp.Response.ShouldEndSession, tt.end)
			}
			if tt.asked != "" && (len(tt.answerer.got) != 1 || tt.answerer.got[0] != tt.asked) {
				t.Errorf("answerer got %v", tt.answerer.got)
			}
		})
	}
}

func TestDispatchSessionEnded(t *testing.T) {
	svc := NewService(&fakeAnswerer{}, Logger.From(zaptest.NewLogger(t)))
	resp := svc.Dispatch(context.Background(), RequestEnvelope{Request: Request{Type: SessionEndedRequest, Reason: "USER_INITIATED"}})

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"version":"1.0","response":{}}` {
		t.Errorf("got %s", data)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	raw := `{"version":"1.0","session":{"new":true,"sessionId":"s1"},
	"request":{"type":"IntentRequest","requestId":"r1","intent":{"name":"InterrogaGeminiIntent",
	"slots":{"prompt":{"name":"prompt","value":"Che ore sono?"}}}}}`
	var env RequestEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatal(err)
	}
	if !env.Request.IsIntent(AskIntent) || env.Request.SlotValue(PromptSlot) != "Che ore sono?" {
		t.Errorf("decoded %+v", env.Request)
	}
	if env.Request.SlotValue("missing") != "" {
		t.Error("missing slot should be empty")
	}
}

func ptr(b bool) *bool { return &b }

func equalPtr(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
