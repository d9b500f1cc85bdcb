package service

import (
	"context"
	"log/slog"

	"github.com/natalia11920/pairpay/internal/cache"
	"github.com/natalia11920/pairpay/internal/calculator"
	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// DebtService serves balance sheets computed from stored expenses.
type DebtService struct {
	store  storage.ExpenseStore
	cache  cache.BalanceCache
	logger *slog.Logger
}

// NewDebtService creates a DebtService. A nil cache disables caching.
func NewDebtService(store storage.ExpenseStore, balanceCache cache.BalanceCache, logger *slog.Logger) *DebtService {
	return &DebtService{store: store, cache: balanceCache, logger: logger}
}

// Balances returns the balance sheet of userID.
func (s *DebtService) Balances(ctx context.Context, userID int64) (*models.BalanceSheet, error) {
	if s.cache == nil {
		return s.compute(ctx, userID)
	}

	version, err := s.cache.Version(ctx, userID)
	if err != nil {
		s.logger.Warn("Balance cache unavailable", "user_id", userID, "error", err)
		return s.compute(ctx, userID)
	}
	if sheet, ok, err := s.cache.Get(ctx, userID, version); err != nil {
		s.logger.Warn("Balance cache read failed", "user_id", userID, "error", err)
	} else if ok {
		return sheet, nil
	}

	sheet, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, userID, version, sheet); err != nil {
		s.logger.Warn("Balance cache write failed", "user_id", userID, "error", err)
	}
	return sheet, nil
}

func (s *DebtService) compute(ctx context.Context, userID int64) (*models.BalanceSheet, error) {
	expenses, err := s.store.ListExpensesInvolving(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	input := make([]calculator.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		input[i] = calculator.FromExpense(e)
	}
	return calculator.Aggregate(userID, input), nil
}

// Invalidate marks the cached balances of userIDs as stale.
// Call it after the write that changed their expenses has committed.
func (s *DebtService) Invalidate(ctx context.Context, userIDs ...int64) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		s.logger.Error("Balance cache invalidation failed", "user_ids", userIDs, "error", err)
	}
}
