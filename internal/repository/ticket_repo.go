package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"furious-host/internal/domain"
)

// TicketRepository define el contrato de persistencia para tickets de soporte.
type TicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) error
	GetByID(ctx context.Context, id string) (domain.Ticket, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id, status string, resolvedAt *time.Time, updatedAt time.Time) error
	UpdateAdminNotes(ctx context.Context, id, adminNotes string, updatedAt time.Time) error
}

type PgTicketRepository struct {
	pool *pgxpool.Pool
}

func NewPgTicketRepository(pool *pgxpool.Pool) *PgTicketRepository {
	return &PgTicketRepository{pool: pool}
}

func (r *PgTicketRepository) Create(ctx context.Context, ticket domain.Ticket) error {
	const query = `
		INSERT INTO tickets (id, user_id, title, description, status, priority, admin_notes, created_at, updated_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.UserID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		nullIfEmpty(ticket.AdminNotes),
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.ResolvedAt,
	)
	return err
}

func (r *PgTicketRepository) GetByID(ctx context.Context, id string) (domain.Ticket, error) {
	const query = ticketSelect + ` WHERE id = $1`

	var (
		t          domain.Ticket
		adminNotes *string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&adminNotes,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ResolvedAt,
	)
	if err != nil {
		return domain.Ticket{}, err
	}
	t.AdminNotes = deref(adminNotes)
	return t, nil
}

// ListByUserID devuelve los tickets del usuario, los mas recientes primero.
func (r *PgTicketRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Ticket, error) {
	const query = ticketSelect + ` WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *PgTicketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	const query = ticketSelect + ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *PgTicketRepository) UpdateStatus(ctx context.Context, id, status string, resolvedAt *time.Time, updatedAt time.Time) error {
	const query = `
		UPDATE tickets SET status = $2, resolved_at = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, status, resolvedAt, updatedAt)
	return err
}

func (r *PgTicketRepository) UpdateAdminNotes(ctx context.Context, id, adminNotes string, updatedAt time.Time) error {
	const query = `
		UPDATE tickets SET admin_notes = $2, updated_at = $3
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, nullIfEmpty(adminNotes), updatedAt)
	return err
}

const ticketSelect = `
	SELECT id, user_id, title, description, status, priority, admin_notes, created_at, updated_at, resolved_at
	FROM tickets`

func collectTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	for rows.Next() {
		var (
			t          domain.Ticket
			adminNotes *string
		)
		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&adminNotes,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.ResolvedAt,
		)
		if err != nil {
			return nil, err
		}
		t.AdminNotes = deref(adminNotes)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
