package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
)

const expenseColumns = "e.id, e.bill_id, e.name, e.price, e.currency, e.payer_id, e.created_at"

// CreateExpense writes an expense and its shares in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO expenses (bill_id, name, price, currency, payer_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			expense.BillID, expense.Name, expense.Price, expense.Currency, expense.PayerID, expense.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		expense.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read expense id: %w", err)
		}

		for _, share := range expense.Shares {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO expense_shares (expense_id, user_id, amount_owed) VALUES (?, ?, ?)",
				expense.ID, share.UserID, share.AmountOwed,
			); err != nil {
				return fmt.Errorf("failed to insert expense share: %w", err)
			}
		}
		return nil
	})
}

// GetExpense retrieves an expense with its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error) {
	expenses, err := s.queryExpenses(ctx, "WHERE e.id = ?", expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %d: %w", expenseID, storage.ErrNotFound)
	}
	return expenses[0], nil
}

// DeleteExpense removes an expense and its shares.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return rowsAffected(res, fmt.Sprintf("expense %d", expenseID))
}

// ListBillExpenses returns the expenses of a bill in creation order.
func (s *SQLiteStore) ListBillExpenses(ctx context.Context, billID int64) ([]*models.Expense, error) {
	return s.queryExpenses(ctx, "WHERE e.bill_id = ?", billID)
}

// ListExpensesInvolving returns every expense userID paid or owes a share of.
func (s *SQLiteStore) ListExpensesInvolving(ctx context.Context, userID int64) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		"WHERE e.payer_id = ? OR e.id IN (SELECT expense_id FROM expense_shares WHERE user_id = ?)",
		userID, userID)
}

// queryExpenses loads the expenses matching where, then their shares in a
// second query. Rows of the first query are closed before the second runs.
func (s *SQLiteStore) queryExpenses(ctx context.Context, where string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses e "+where+" ORDER BY e.id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}

	expenses := []*models.Expense{}
	byID := map[int64]*models.Expense{}
	for rows.Next() {
		e := &models.Expense{}
		if err := rows.Scan(&e.ID, &e.BillID, &e.Name, &e.Price, &e.Currency, &e.PayerID, &e.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]int64, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	shareRows, err := s.db.QueryContext(ctx,
		"SELECT expense_id, user_id, amount_owed FROM expense_shares WHERE expense_id IN ("+
			placeholders(len(ids))+") ORDER BY expense_id, user_id",
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var expenseID int64
		var share models.Share
		if err := shareRows.Scan(&expenseID, &share.UserID, &share.AmountOwed); err != nil {
			return nil, fmt.Errorf("failed to scan expense share: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Shares = append(e.Shares, share)
		}
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense shares: %w", err)
	}

	return expenses, nil
}
