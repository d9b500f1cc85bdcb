package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/natalia11920/pairpay/internal/calculator"
	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/money"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// ExpenseService records expenses inside bills.
type ExpenseService struct {
	store  BillStore
	debts  *DebtService
	logger *slog.Logger
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store BillStore, debts *DebtService, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{store: store, debts: debts, logger: logger}
}

// ExpenseInput carries the fields of a create-expense request.
// Price is in minor units.
type ExpenseInput struct {
	Name         string
	Price        int64
	Currency     string
	PayerID      int64
	Participants []int64
}

// ExpenseDetails is an expense with its users resolved.
type ExpenseDetails struct {
	Expense *models.Expense
	Payer   *models.User
	Shares  []ShareDetails
}

// ShareDetails is one participant's share with their profile.
type ShareDetails struct {
	User       *models.User
	AmountOwed int64
}

// PreviewSplit computes the equal split of price without storing anything.
// Prices above money.MaxAmount are rejected.
func PreviewSplit(price int64, participants []int64) ([]models.Share, error) {
	if price > int64(money.MaxAmount) {
		return nil, apperr.Validation("price must be at most %s", money.MaxAmount)
	}
	shares, err := calculator.Shares(price, participants)
	if errors.Is(err, calculator.ErrInvalidSplit) {
		return nil, apperr.Validation("%s", err.Error())
	}
	return shares, err
}

// Create adds an expense to the bill, splitting the price equally among
// participants. Any participant of the bill may add expenses.
func (s *ExpenseService) Create(ctx context.Context, caller, billID int64, in ExpenseInput) (*models.Expense, error) {
	bill, err := loadBillForParticipant(ctx, s.store, billID, caller)
	if err != nil {
		return nil, err
	}

	name, err := requireText("name", in.Name, maxNameLength)
	if err != nil {
		return nil, err
	}
	currency, err := money.NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, apperr.Validation("currency must be a three-letter code")
	}
	if !bill.IsParticipant(in.PayerID) {
		return nil, apperr.Validation("payer must be a participant of the bill")
	}
	for _, id := range in.Participants {
		if !bill.IsParticipant(id) {
			return nil, apperr.Validation("user %d is not a participant of the bill", id)
		}
	}

	shares, err := PreviewSplit(in.Price, in.Participants)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		BillID:   billID,
		Name:     name,
		Price:    in.Price,
		Currency: currency,
		PayerID:  in.PayerID,
		Shares:   shares,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("CreateExpense failed", "bill_id", billID, "error", err)
		return nil, apperr.Internal(err)
	}
	s.debts.Invalidate(ctx, expense.UserIDs()...)

	s.logger.Info("Expense created",
		"expense_id", expense.ID,
		"bill_id", billID,
		"price", expense.Price,
		"currency", expense.Currency,
		"participants", len(shares),
	)
	return expense, nil
}

// Get returns an expense of a bill the caller participates in.
func (s *ExpenseService) Get(ctx context.Context, caller, billID, expenseID int64) (*ExpenseDetails, error) {
	if _, err := loadBillForParticipant(ctx, s.store, billID, caller); err != nil {
		return nil, err
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, storeError(err, "expense")
	}
	if expense.BillID != billID {
		return nil, apperr.NotFound("expense not found")
	}

	users, err := s.store.GetUsersByIDs(ctx, expense.UserIDs())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	details := &ExpenseDetails{
		Expense: expense,
		Payer:   users[expense.PayerID],
		Shares:  make([]ShareDetails, 0, len(expense.Shares)),
	}
	for _, share := range expense.Shares {
		details.Shares = append(details.Shares, ShareDetails{User: users[share.UserID], AmountOwed: share.AmountOwed})
	}
	return details, nil
}

// Delete removes an expense. Only the creator of the expense's bill may
// delete it; other participants get Forbidden.
func (s *ExpenseService) Delete(ctx context.Context, caller, expenseID int64) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return storeError(err, "expense")
	}
	if _, err := loadBillForCreator(ctx, s.store, expense.BillID, caller); err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return apperr.NotFound("expense not found")
		}
		return err
	}

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return storeError(err, "expense")
	}
	s.debts.Invalidate(ctx, expense.UserIDs()...)

	s.logger.Info("Expense deleted", "expense_id", expenseID, "bill_id", expense.BillID, "user_id", caller)
	return nil
}
