package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"furious-host/internal/llm"
	"furious-host/internal/service"
)

// ChatHandler mantiene dependencias para los endpoints del chat de soporte.
type ChatHandler struct {
	logger   *zap.Logger
	chatServ *service.ChatService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chatServ *service.ChatService) *ChatHandler {
	return &ChatHandler{logger: logger, chatServ: chatServ}
}

// PostMessage maneja POST /chat/message.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	turn, err := h.chatServ.Send(c.Request.Context(), claims.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChatEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		case errors.Is(err, llm.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":        "Rate limit exceeded. Please try again later.",
				"user_message": turn.UserMessage,
			})
		case errors.Is(err, llm.ErrPaymentRequired):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":        "Payment required. Please add credits to your workspace.",
				"user_message": turn.UserMessage,
			})
		default:
			h.logger.Error("chat turn failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":        "Failed to get AI response",
				"user_message": turn.UserMessage,
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response":          turn.Response,
		"user_message":      turn.UserMessage,
		"assistant_message": turn.AssistantMessage,
	})
}

// ListMessages maneja GET /chat/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	messages, err := h.chatServ.History(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list chat messages failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
