package repository

import (
	"context"
	"database/sql"

	"channel-chat/internal/message/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a message repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the message and fills in the database-assigned ID.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO messages (channel_id, author_id, body, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		m.ChannelID, m.AuthorID, m.Body, m.CreatedAt,
	).Scan(&m.ID)
}

// ListRecent returns up to limit messages for the channel, newest first.
func (r *PostgresRepository) ListRecent(ctx context.Context, channelID int64, limit int) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, channel_id, author_id, body, created_at FROM messages
		 WHERE channel_id = $1 ORDER BY id DESC LIMIT $2`, channelID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
