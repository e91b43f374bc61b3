// Package terminal tracks registered RFID scan terminals and their refresh
// tokens.
package terminal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists terminal registrations in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert ensures a terminal record exists.
func (r *Repository) Upsert(ctx context.Context, terminalID string) error {
	if terminalID == "" {
		return errors.New("terminal id required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO terminals (terminal_id)
		VALUES ($1)
		ON CONFLICT (terminal_id) DO NOTHING
	`, terminalID)
	if err != nil {
		return fmt.Errorf("upsert terminal: %w", err)
	}
	return nil
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, terminalID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (terminal_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, terminalID, token, expiresAt)
	return err
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
