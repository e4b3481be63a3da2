package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"furious-host/internal/domain"
	"furious-host/internal/repository"
)

// TicketService maneja el ciclo de vida de tickets de soporte.
// Las mutaciones de status y admin_notes exigen un grant admin consultado
// por request; la politica de filas de la base sigue siendo la frontera real.
type TicketService struct {
	logger  *zap.Logger
	tickets repository.TicketRepository
	roles   repository.RoleRepository
}

var (
	ErrTicketInvalidInput    = errors.New("ticket invalid input")
	ErrTicketInvalidStatus   = errors.New("ticket invalid status")
	ErrTicketInvalidPriority = errors.New("ticket invalid priority")
	ErrAccessDenied          = errors.New("access denied")
)

func NewTicketService(logger *zap.Logger, tickets repository.TicketRepository, roles repository.RoleRepository) *TicketService {
	return &TicketService{logger: logger, tickets: tickets, roles: roles}
}

// Create abre un ticket a nombre del usuario autenticado.
func (s *TicketService) Create(ctx context.Context, userID, title, description, priority string) (domain.Ticket, error) {
	userID = strings.TrimSpace(userID)
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	priority = strings.TrimSpace(priority)

	if userID == "" || title == "" || description == "" {
		return domain.Ticket{}, ErrTicketInvalidInput
	}
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.IsValidTicketPriority(priority) {
		return domain.Ticket{}, ErrTicketInvalidPriority
	}

	now := time.Now().UTC()
	ticket := domain.Ticket{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return domain.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}
	return ticket, nil
}

// ListOwn devuelve los tickets del usuario, los mas recientes primero.
func (s *TicketService) ListOwn(ctx context.Context, userID string) ([]domain.Ticket, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrTicketInvalidInput
	}
	return s.tickets.ListByUserID(ctx, userID)
}

// ListAll devuelve todos los tickets; solo para admins.
func (s *TicketService) ListAll(ctx context.Context, actorID string) ([]domain.Ticket, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.tickets.ListAll(ctx)
}

// UpdateStatus cambia el status de un ticket. Cualquier transicion es valida
// entre los cuatro valores; resolved_at se fija exactamente cuando el nuevo
// status es resolved y se limpia en cualquier otro caso.
func (s *TicketService) UpdateStatus(ctx context.Context, actorID, ticketID, status string) (domain.Ticket, error) {
	status = strings.TrimSpace(status)
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return domain.Ticket{}, ErrTicketInvalidInput
	}
	if !domain.IsValidTicketStatus(status) {
		return domain.Ticket{}, ErrTicketInvalidStatus
	}
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return domain.Ticket{}, err
	}

	now := time.Now().UTC()
	var resolvedAt *time.Time
	if status == domain.TicketStatusResolved {
		resolvedAt = &now
	}
	if err := s.tickets.UpdateStatus(ctx, ticketID, status, resolvedAt, now); err != nil {
		return domain.Ticket{}, fmt.Errorf("update ticket status: %w", err)
	}
	return s.tickets.GetByID(ctx, ticketID)
}

// UpdateAdminNotes escribe las notas internas de un ticket; solo para admins.
func (s *TicketService) UpdateAdminNotes(ctx context.Context, actorID, ticketID, notes string) (domain.Ticket, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return domain.Ticket{}, ErrTicketInvalidInput
	}
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return domain.Ticket{}, err
	}

	if err := s.tickets.UpdateAdminNotes(ctx, ticketID, strings.TrimSpace(notes), time.Now().UTC()); err != nil {
		return domain.Ticket{}, fmt.Errorf("update admin notes: %w", err)
	}
	return s.tickets.GetByID(ctx, ticketID)
}

// IsAdmin consulta si el usuario tiene el grant admin.
func (s *TicketService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, nil
	}
	return s.roles.HasRole(ctx, userID, domain.RoleAdmin)
}

func (s *TicketService) requireAdmin(ctx context.Context, actorID string) error {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return ErrAccessDenied
	}
	isAdmin, err := s.roles.HasRole(ctx, actorID, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("check admin role: %w", err)
	}
	if !isAdmin {
		if s.logger != nil {
			s.logger.Warn("admin operation rejected", zap.String("actor_id", actorID))
		}
		return ErrAccessDenied
	}
	return nil
}
