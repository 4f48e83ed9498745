package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xpanvictor/verbale/internal/domains/skill"
	"github.com/xpanvictor/verbale/pkg/Logger"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, env skill.RequestEnvelope) skill.ResponseEnvelope
}

// SkillHandler handles voice-assistant requests
type SkillHandler struct {
	dispatcher Dispatcher
	logger     *Logger.Logger
}

func NewSkillHandler(dispatcher Dispatcher, logger *Logger.Logger) *SkillHandler {
	return &SkillHandler{dispatcher: dispatcher, logger: logger}
}

// HandleRequest answers one skill request
// @Summary Voice skill endpoint
// @Accept json
// @Produce json
// @Param request body skill.RequestEnvelope true "Skill request envelope"
// @Success 200 {object} skill.ResponseEnvelope
// @Failure 400 {object} ErrorResponse "Invalid request envelope"
// @Router /skill [post]
func (h *SkillHandler) HandleRequest(c *gin.Context) {
	var env skill.RequestEnvelope
	if err := c.ShouldBindJSON(&env); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request envelope",
			Details: err.Error(),
		})
		return
	}

	h.logger.Debugf("skill request %s (%s)", env.Request.RequestID, env.Request.Type)
	c.JSON(http.StatusOK, h.dispatcher.Dispatch(c.Request.Context(), env))
}

func (h *SkillHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
