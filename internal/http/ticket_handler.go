package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"furious-host/internal/service"
)

// TicketHandler mantiene dependencias para los endpoints de tickets del cliente.
type TicketHandler struct {
	logger     *zap.Logger
	ticketServ *service.TicketService
}

// NewTicketHandler crea una instancia de TicketHandler con dependencias necesarias.
func NewTicketHandler(logger *zap.Logger, ticketServ *service.TicketService) *TicketHandler {
	return &TicketHandler{logger: logger, ticketServ: ticketServ}
}

// CreateTicket maneja POST /tickets.
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Priority    string `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create ticket request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ticket, err := h.ticketServ.Create(c.Request.Context(), claims.UserID, req.Title, req.Description, req.Priority)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketInvalidInput), errors.Is(err, service.ErrTicketInvalidPriority):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		default:
			h.logger.Error("create ticket failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create ticket"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

// ListTickets maneja GET /tickets.
func (h *TicketHandler) ListTickets(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	tickets, err := h.ticketServ.ListOwn(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list tickets failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tickets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}
