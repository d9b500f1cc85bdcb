package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveRefreshToken records an issued refresh token.
func (s *SQLiteStore) SaveRefreshToken(ctx context.Context, tokenID string, userID int64, expiresAt int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, expires_at) VALUES (?, ?, ?)",
		tokenID, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// RefreshTokenActive reports whether the token exists, belongs to userID,
// is not revoked and has not expired.
func (s *SQLiteStore) RefreshTokenActive(ctx context.Context, tokenID string, userID int64) (bool, error) {
	var revoked bool
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT revoked, expires_at FROM refresh_tokens WHERE id = ? AND user_id = ?",
		tokenID, userID,
	).Scan(&revoked, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return !revoked && expiresAt > time.Now().Unix(), nil
}

// RevokeRefreshTokens revokes every refresh token of userID and prunes expired ones.
func (s *SQLiteStore) RevokeRefreshTokens(ctx context.Context, userID int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to revoke refresh tokens: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM refresh_tokens WHERE expires_at <= ?", time.Now().Unix()); err != nil {
			return fmt.Errorf("failed to prune refresh tokens: %w", err)
		}
		return nil
	})
}
