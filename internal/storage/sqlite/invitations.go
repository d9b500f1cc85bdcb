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

// CreateBillInvitations inserts a batch of pending invitations in one transaction.
func (s *SQLiteStore) CreateBillInvitations(ctx context.Context, invitations []*models.BillInvitation) error {
	now := time.Now().Unix()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, inv := range invitations {
			if inv.CreatedAt == 0 {
				inv.CreatedAt = now
			}
			inv.Status = models.StatusPending

			res, err := tx.ExecContext(ctx, `
				INSERT INTO bill_invitations (bill_id, inviter_id, invitee_id, status, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				inv.BillID, inv.InviterID, inv.InviteeID, string(inv.Status), inv.CreatedAt,
			)
			if isUniqueViolation(err) {
				return fmt.Errorf("invitation of user %d to bill %d: %w", inv.InviteeID, inv.BillID, storage.ErrConflict)
			}
			if err != nil {
				return fmt.Errorf("failed to insert invitation: %w", err)
			}
			inv.ID, err = res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to read invitation id: %w", err)
			}
		}
		return nil
	})
}

// GetBillInvitation retrieves an invitation by ID.
func (s *SQLiteStore) GetBillInvitation(ctx context.Context, id int64) (*models.BillInvitation, error) {
	inv := &models.BillInvitation{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, bill_id, inviter_id, invitee_id, status, created_at, resolved_at
		FROM bill_invitations WHERE id = ?`, id,
	).Scan(&inv.ID, &inv.BillID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt, &inv.ResolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill invitation %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill invitation: %w", err)
	}
	return inv, nil
}

// HasPendingBillInvitation reports whether inviteeID already has a pending
// invitation to billID.
func (s *SQLiteStore) HasPendingBillInvitation(ctx context.Context, billID, inviteeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bill_invitations
			WHERE bill_id = ? AND invitee_id = ? AND status = 'pending'
		)`, billID, inviteeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitation: %w", err)
	}
	return exists, nil
}

// ListPendingBillInvitations returns the pending invitations addressed to
// inviteeID, oldest first.
func (s *SQLiteStore) ListPendingBillInvitations(ctx context.Context, inviteeID int64) ([]models.PendingBillInvitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bi.id, bi.bill_id, b.name, u.mail, bi.created_at
		FROM bill_invitations bi
		JOIN bills b ON b.id = bi.bill_id
		JOIN users u ON u.id = bi.inviter_id
		WHERE bi.invitee_id = ? AND bi.status = 'pending'
		ORDER BY bi.created_at, bi.id`, inviteeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bill invitations: %w", err)
	}
	defer rows.Close()

	invitations := []models.PendingBillInvitation{}
	for rows.Next() {
		var p models.PendingBillInvitation
		if err := rows.Scan(&p.ID, &p.BillID, &p.BillName, &p.InviterMail, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill invitation: %w", err)
		}
		invitations = append(invitations, p)
	}
	return invitations, rows.Err()
}

// ResolveBillInvitation moves a pending invitation to status. Accepting adds
// the invitee to bill_users; an existing membership row is left as is.
func (s *SQLiteStore) ResolveBillInvitation(ctx context.Context, id int64, status models.Status) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().Unix()
		res, err := tx.ExecContext(ctx, `
			UPDATE bill_invitations SET status = ?, resolved_at = ?
			WHERE id = ? AND status = 'pending'`, string(status), now, id)
		if err != nil {
			return fmt.Errorf("failed to resolve bill invitation: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		} else if n == 0 {
			return missingOrResolved(ctx, tx, "bill_invitations", id)
		}

		if status != models.StatusAccepted {
			return nil
		}

		var billID, inviteeID int64
		if err := tx.QueryRowContext(ctx,
			"SELECT bill_id, invitee_id FROM bill_invitations WHERE id = ?", id,
		).Scan(&billID, &inviteeID); err != nil {
			return fmt.Errorf("failed to read bill invitation: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO bill_users (bill_id, user_id, joined_at) VALUES (?, ?, ?)",
			billID, inviteeID, now); err != nil {
			return fmt.Errorf("failed to add bill member: %w", err)
		}
		return nil
	})
}
