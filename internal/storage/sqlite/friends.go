package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
)

// CreateFriendRequest inserts a pending friend request and populates req.ID.
func (s *SQLiteStore) CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error {
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}
	req.Status = models.StatusPending

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO friend_requests (requester_id, target_id, status, created_at)
		VALUES (?, ?, ?, ?)`,
		req.RequesterID, req.TargetID, string(req.Status), req.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("friend request %d -> %d: %w", req.RequesterID, req.TargetID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}

	req.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read friend request id: %w", err)
	}
	return nil
}

// GetFriendRequest retrieves a friend request by ID.
func (s *SQLiteStore) GetFriendRequest(ctx context.Context, id int64) (*models.FriendRequest, error) {
	req := &models.FriendRequest{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, requester_id, target_id, status, created_at, resolved_at
		FROM friend_requests WHERE id = ?`, id,
	).Scan(&req.ID, &req.RequesterID, &req.TargetID, &req.Status, &req.CreatedAt, &req.ResolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("friend request %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get friend request: %w", err)
	}
	return req, nil
}

// HasPendingFriendRequest reports a pending request between a and b in either direction.
func (s *SQLiteStore) HasPendingFriendRequest(ctx context.Context, a, b int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM friend_requests
			WHERE status = 'pending'
			  AND ((requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?))
		)`, a, b, b, a,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending friend request: %w", err)
	}
	return exists, nil
}

// ListPendingFriendRequests returns the pending requests addressed to targetID,
// oldest first, joined with the requester's profile.
func (s *SQLiteStore) ListPendingFriendRequests(ctx context.Context, targetID int64) ([]models.PendingFriendRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fr.id, fr.created_at,
		       u.id, u.name, u.surname, u.mail, u.admin, u.password_hash, u.created_at, u.updated_at
		FROM friend_requests fr
		JOIN users u ON u.id = fr.requester_id
		WHERE fr.target_id = ? AND fr.status = 'pending'
		ORDER BY fr.created_at, fr.id`, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	requests := []models.PendingFriendRequest{}
	for rows.Next() {
		var p models.PendingFriendRequest
		u := &p.Requester
		if err := rows.Scan(&p.ID, &p.CreatedAt,
			&u.ID, &u.Name, &u.Surname, &u.Mail, &u.Admin, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, p)
	}
	return requests, rows.Err()
}

// ResolveFriendRequest moves a pending request to status.
// Only one of several concurrent resolutions can match the pending row.
func (s *SQLiteStore) ResolveFriendRequest(ctx context.Context, id int64, status models.Status) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().Unix()
		res, err := tx.ExecContext(ctx, `
			UPDATE friend_requests SET status = ?, resolved_at = ?
			WHERE id = ? AND status = 'pending'`, string(status), now, id)
		if err != nil {
			return fmt.Errorf("failed to resolve friend request: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		} else if n == 0 {
			return missingOrResolved(ctx, tx, "friend_requests", id)
		}

		if status != models.StatusAccepted {
			return nil
		}

		var requesterID, targetID int64
		if err := tx.QueryRowContext(ctx,
			"SELECT requester_id, target_id FROM friend_requests WHERE id = ?", id,
		).Scan(&requesterID, &targetID); err != nil {
			return fmt.Errorf("failed to read friend request: %w", err)
		}
		low, high := models.FriendPair(requesterID, targetID)
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO friendships (user_low, user_high, created_at) VALUES (?, ?, ?)",
			low, high, now); err != nil {
			return fmt.Errorf("failed to create friendship: %w", err)
		}
		return nil
	})
}

// missingOrResolved distinguishes a missing row from an already resolved one
// after a conditional update matched nothing.
func missingOrResolved(ctx context.Context, tx *sql.Tx, table string, id int64) error {
	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = ?)", id,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s: %w", table, err)
	}
	if !exists {
		return fmt.Errorf("%s %d: %w", table, id, storage.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w", table, id, storage.ErrNotPending)
}

// AreFriends reports whether a and b are friends.
func (s *SQLiteStore) AreFriends(ctx context.Context, a, b int64) (bool, error) {
	low, high := models.FriendPair(a, b)
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM friendships WHERE user_low = ? AND user_high = ?)",
		low, high,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// ListFriendIDs returns the ids of userID's friends in ascending order.
func (s *SQLiteStore) ListFriendIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_high FROM friendships WHERE user_low = ?
		UNION
		SELECT user_low FROM friendships WHERE user_high = ?
		ORDER BY 1`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
