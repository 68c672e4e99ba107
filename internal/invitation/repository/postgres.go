package repository

import (
	"context"
	"database/sql"
	"errors"

	"channel-chat/internal/invitation/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an invitation repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const invitationColumns = `id, channel_id, inviter_id, invitee_id, status, created_at`

// GetByID returns the invitation for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id,
	).Scan(&inv.ID, &inv.ChannelID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// ListPendingByInvitee returns the invitee's pending invitations, newest first.
func (r *PostgresRepository) ListPendingByInvitee(ctx context.Context, inviteeID int64) ([]*domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations
		 WHERE invitee_id = $1 AND status = $2 ORDER BY created_at DESC`,
		inviteeID, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.ID, &inv.ChannelID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &inv)
	}
	return out, rows.Err()
}

// Create persists the invitation. The invitation must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, channel_id, inviter_id, invitee_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.ChannelID, inv.InviterID, inv.InviteeID, inv.Status, inv.CreatedAt)
	return err
}

// SetStatus updates the invitation status. No-op if the invitation does not exist.
func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status domain.Status) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = $2 WHERE id = $1`, id, status)
	return err
}
