package ai

import (
	"context"
	"errors"
	"net/http"

	"github.com/anish3d/folio/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Answerer is what the handler needs from Assistant.
type Answerer interface {
	Answer(ctx context.Context, messages []Message) (string, error)
}

type chatRequest struct {
	Messages []Message `json:"messages" binding:"required"`
}

type Handler struct {
	assistant Answerer
	logger    *zap.Logger
}

func NewHandler(assistant Answerer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{assistant: assistant, logger: logger.Named("ai")}
}

// RegisterRoutes mounts POST /ai-chat behind mw.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/ai-chat", append(mw, h.chat)...)
}

// POST /ai-chat {"messages":[{"role":"user","content":"..."}]}
func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "messages are required")
		return
	}

	answer, err := h.assistant.Answer(c.Request.Context(), req.Messages)
	switch {
	case errors.Is(err, ErrNoQuestion):
		response.BadRequest(c, "a user message is required")
	case errors.Is(err, ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    "Rate limit exceeded",
			"response": "The AI service is currently experiencing high demand. Please try again in a moment.",
		})
	case err != nil:
		h.logger.Error("answer failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
	default:
		c.JSON(http.StatusOK, gin.H{"response": answer})
	}
}
