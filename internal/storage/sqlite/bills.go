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

// CreateBill persists a new bill to the database.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO bills (name, label, creator_id, created_at) VALUES (?, ?, ?, ?)",
			bill.Name, bill.Label, bill.CreatorID, bill.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill: %w", err)
		}
		bill.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read bill id: %w", err)
		}

		for _, userID := range bill.Members {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO bill_users (bill_id, user_id, joined_at) VALUES (?, ?, ?)",
				bill.ID, userID, bill.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert bill member: %w", err)
			}
		}
		return nil
	})
}

// GetBill retrieves a bill by ID, including its members.
func (s *SQLiteStore) GetBill(ctx context.Context, billID int64) (*models.Bill, error) {
	bill := &models.Bill{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, label, creator_id, created_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.Name, &bill.Label, &bill.CreatorID, &bill.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %d: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM bill_users WHERE bill_id = ? ORDER BY user_id",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill members: %w", err)
	}
	defer rows.Close()

	bill.Members, err = scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read bill members: %w", err)
	}
	return bill, nil
}

// UpdateBill writes the bill name and label.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bills SET name = ?, label = ? WHERE id = ?",
		bill.Name, bill.Label, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	return rowsAffected(res, fmt.Sprintf("bill %d", bill.ID))
}

// DeleteBill removes a bill. Expenses, shares, memberships and invitations
// go with it through ON DELETE CASCADE.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return rowsAffected(res, fmt.Sprintf("bill %d", billID))
}

// RemoveBillMember drops userID from the bill's members.
func (s *SQLiteStore) RemoveBillMember(ctx context.Context, billID, userID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM bill_users WHERE bill_id = ? AND user_id = ?", billID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove bill member: %w", err)
	}
	return rowsAffected(res, fmt.Sprintf("member %d of bill %d", userID, billID))
}

// ListCreatedBills returns one page of the bills userID created, newest first,
// and the total number of such bills.
func (s *SQLiteStore) ListCreatedBills(ctx context.Context, userID int64, page models.Page) ([]models.BillSummary, int, error) {
	return s.listBills(ctx, "FROM bills b WHERE b.creator_id = ?", userID, page)
}

// ListAssignedBills returns one page of the bills userID is a member of.
func (s *SQLiteStore) ListAssignedBills(ctx context.Context, userID int64, page models.Page) ([]models.BillSummary, int, error) {
	return s.listBills(ctx,
		"FROM bills b JOIN bill_users bu ON bu.bill_id = b.id WHERE bu.user_id = ?",
		userID, page)
}

func (s *SQLiteStore) listBills(ctx context.Context, from string, userID int64, page models.Page) ([]models.BillSummary, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bills: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT b.id, b.name, b.label, b.creator_id, b.created_at "+from+
			" ORDER BY b.created_at DESC, b.id DESC LIMIT ? OFFSET ?",
		userID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bills: %w", err)
	}

	bills := []models.BillSummary{}
	for rows.Next() {
		var b models.BillSummary
		if err := rows.Scan(&b.ID, &b.Name, &b.Label, &b.CreatorID, &b.CreatedAt); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.Totals = map[string]int64{}
		bills = append(bills, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating bills: %w", err)
	}

	if err := s.fillTotals(ctx, bills); err != nil {
		return nil, 0, err
	}
	return bills, total, nil
}

// fillTotals sums expense prices per bill and currency.
func (s *SQLiteStore) fillTotals(ctx context.Context, bills []models.BillSummary) error {
	if len(bills) == 0 {
		return nil
	}

	ids := make([]int64, len(bills))
	index := make(map[int64]int, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
		index[b.ID] = i
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT bill_id, currency, SUM(price) FROM expenses WHERE bill_id IN ("+
			placeholders(len(ids))+") GROUP BY bill_id, currency",
		int64Args(ids)...)
	if err != nil {
		return fmt.Errorf("failed to sum bill totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var billID, sum int64
		var currency string
		if err := rows.Scan(&billID, &currency, &sum); err != nil {
			return fmt.Errorf("failed to scan bill total: %w", err)
		}
		bills[index[billID]].Totals[currency] = sum
	}
	return rows.Err()
}
