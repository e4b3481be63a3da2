package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"furious-host/internal/domain"
)

// RoleRepository consulta los grants de capacidades por usuario.
type RoleRepository interface {
	HasRole(ctx context.Context, userID, role string) (bool, error)
	GetByUserID(ctx context.Context, userID string) (domain.UserRole, error)
	Grant(ctx context.Context, grant domain.UserRole) error
	ListAll(ctx context.Context) ([]domain.UserRole, error)
}

type PgRoleRepository struct {
	pool *pgxpool.Pool
}

func NewPgRoleRepository(pool *pgxpool.Pool) *PgRoleRepository {
	return &PgRoleRepository{pool: pool}
}

func (r *PgRoleRepository) HasRole(ctx context.Context, userID, role string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2
		)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, userID, role).Scan(&exists)
	return exists, err
}

func (r *PgRoleRepository) GetByUserID(ctx context.Context, userID string) (domain.UserRole, error) {
	const query = `
		SELECT id, user_id, role, created_at
		FROM user_roles
		WHERE user_id = $1
	`
	var ur domain.UserRole
	err := r.pool.QueryRow(ctx, query, userID).Scan(&ur.ID, &ur.UserID, &ur.Role, &ur.CreatedAt)
	if err != nil {
		return domain.UserRole{}, err
	}
	return ur, nil
}

func (r *PgRoleRepository) Grant(ctx context.Context, grant domain.UserRole) error {
	const query = `
		INSERT INTO user_roles (id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, role) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, grant.ID, grant.UserID, grant.Role, grant.CreatedAt)
	return err
}

func (r *PgRoleRepository) ListAll(ctx context.Context) ([]domain.UserRole, error) {
	const query = `
		SELECT id, user_id, role, created_at
		FROM user_roles
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []domain.UserRole
	for rows.Next() {
		var ur domain.UserRole
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.Role, &ur.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, ur)
	}
	return grants, rows.Err()
}
