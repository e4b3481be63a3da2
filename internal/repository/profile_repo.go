package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"furious-host/internal/domain"
)

// ProfileRepository define el contrato de persistencia para perfiles de clientes.
type ProfileRepository interface {
	Create(ctx context.Context, profile domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
	Update(ctx context.Context, userID, name, discordUsername string) error
	ListAll(ctx context.Context) ([]domain.Profile, error)
}

// PgProfileRepository implementa ProfileRepository usando pgxpool.
type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) Create(ctx context.Context, profile domain.Profile) error {
	const query = `
		INSERT INTO profiles (id, user_id, name, discord_username, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.UserID,
		nullIfEmpty(profile.Name),
		nullIfEmpty(profile.DiscordUsername),
		profile.CreatedAt,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.Profile, error) {
	const query = `
		SELECT id, user_id, name, discord_username, created_at
		FROM profiles
		WHERE user_id = $1
	`
	var (
		p       domain.Profile
		name    *string
		discord *string
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.ID, &p.UserID, &name, &discord, &p.CreatedAt)
	if err != nil {
		return domain.Profile{}, err
	}
	p.Name = deref(name)
	p.DiscordUsername = deref(discord)
	return p, nil
}

func (r *PgProfileRepository) Update(ctx context.Context, userID, name, discordUsername string) error {
	const query = `
		UPDATE profiles SET name = $2, discord_username = $3
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID, nullIfEmpty(name), nullIfEmpty(discordUsername))
	return err
}

func (r *PgProfileRepository) ListAll(ctx context.Context) ([]domain.Profile, error) {
	const query = `
		SELECT id, user_id, name, discord_username, created_at
		FROM profiles
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var (
			p       domain.Profile
			name    *string
			discord *string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &name, &discord, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Name = deref(name)
		p.DiscordUsername = deref(discord)
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
