package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"furious-host/internal/repository"
	"furious-host/internal/service"
)

// AdminHandler mantiene dependencias para el panel de administracion.
type AdminHandler struct {
	logger     *zap.Logger
	ticketServ *service.TicketService
	profiles   repository.ProfileRepository
	roles      repository.RoleRepository
}

// NewAdminHandler crea una instancia de AdminHandler con dependencias necesarias.
func NewAdminHandler(
	logger *zap.Logger,
	ticketServ *service.TicketService,
	profiles repository.ProfileRepository,
	roles repository.RoleRepository,
) *AdminHandler {
	return &AdminHandler{
		logger:     logger,
		ticketServ: ticketServ,
		profiles:   profiles,
		roles:      roles,
	}
}

// ListTickets maneja GET /admin/tickets.
func (h *AdminHandler) ListTickets(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	tickets, err := h.ticketServ.ListAll(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrAccessDenied) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		h.logger.Error("list all tickets failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list tickets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// UpdateTicketStatus maneja PATCH /admin/tickets/:id/status.
func (h *AdminHandler) UpdateTicketStatus(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update status request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ticket, err := h.ticketServ.UpdateStatus(c.Request.Context(), claims.UserID, c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		case errors.Is(err, service.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		case errors.Is(err, pgx.ErrNoRows):
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		default:
			h.logger.Error("update ticket status failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update ticket"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// UpdateTicketNotes maneja PATCH /admin/tickets/:id/notes.
func (h *AdminHandler) UpdateTicketNotes(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		AdminNotes string `json:"admin_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update notes request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ticket, err := h.ticketServ.UpdateAdminNotes(c.Request.Context(), claims.UserID, c.Param("id"), req.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		case errors.Is(err, pgx.ErrNoRows):
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		default:
			h.logger.Error("update ticket notes failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update ticket"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// ListUsers maneja GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	profiles, err := h.profiles.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": profiles})
}

// ListRoles maneja GET /admin/roles.
func (h *AdminHandler) ListRoles(c *gin.Context) {
	roles, err := h.roles.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list roles failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list roles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"roles": roles})
}
