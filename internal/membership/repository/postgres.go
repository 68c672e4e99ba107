package repository

import (
	"context"
	"database/sql"
	"errors"

	"channel-chat/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the membership for (channelID, userID), or nil if the user is not a member.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, channelID, userID int64) (*domain.Membership, error) {
	var m domain.Membership
	err := r.db.QueryRowContext(ctx,
		`SELECT channel_id, user_id, role, created_at FROM memberships
		 WHERE channel_id = $1 AND user_id = $2`, channelID, userID,
	).Scan(&m.ChannelID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// ListMemberIDs returns the user ids of every current member of the channel.
func (r *PostgresRepository) ListMemberIDs(ctx context.Context, channelID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM memberships WHERE channel_id = $1`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// ListChannelIDsByUser returns the channel ids the user belongs to.
func (r *PostgresRepository) ListChannelIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT channel_id FROM memberships WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// Add inserts the membership. No-op if it already exists.
func (r *PostgresRepository) Add(ctx context.Context, m *domain.Membership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO memberships (channel_id, user_id, role, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (channel_id, user_id) DO NOTHING`,
		m.ChannelID, m.UserID, m.Role, m.CreatedAt)
	return err
}

// Remove deletes the membership. Idempotent; not an error if absent.
func (r *PostgresRepository) Remove(ctx context.Context, channelID, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE channel_id = $1 AND user_id = $2`, channelID, userID)
	return err
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
