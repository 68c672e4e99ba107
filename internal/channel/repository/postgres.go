package repository

import (
	"context"
	"database/sql"
	"errors"

	"channel-chat/internal/channel/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a channel repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the channel for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Channel, error) {
	var c domain.Channel
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at FROM channels WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Create persists the channel and fills in the database-assigned ID.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Channel) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO channels (name, created_by, created_at) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.CreatedBy, c.CreatedAt,
	).Scan(&c.ID)
}

// Rename changes the channel name. No-op if the channel does not exist.
func (r *PostgresRepository) Rename(ctx context.Context, id int64, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE channels SET name = $2 WHERE id = $1`, id, name)
	return err
}
