package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/natalia11920/pairpay/internal/calculator"
	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// Pagination limits for bill listings.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Bill list roles.
const (
	RoleCreator     = "creator"
	RoleParticipant = "participant"
)

// BillStore is the persistence BillService needs.
type BillStore interface {
	storage.UserStore
	storage.FriendStore
	storage.BillStore
	storage.InvitationStore
	storage.ExpenseStore
}

// BillService manages bills and their participants.
type BillService struct {
	store  BillStore
	debts  *DebtService
	logger *slog.Logger
}

// NewBillService creates a new BillService.
func NewBillService(store BillStore, debts *DebtService, logger *slog.Logger) *BillService {
	return &BillService{store: store, debts: debts, logger: logger}
}

// BillPage is one page of a bill listing.
type BillPage struct {
	Bills       []models.BillSummary
	Role        string
	TotalItems  int
	CurrentPage int
	TotalPages  int
}

// BillDetails is a bill with everything the details view shows.
type BillDetails struct {
	Bill     *models.Bill
	Creator  *models.User
	Members  []*models.User
	Expenses []*models.Expense

	// People resolves every user referenced by the expenses, including
	// participants who have since been removed from the bill.
	People map[int64]*models.User

	// Totals is the sum of expense prices per currency.
	Totals map[string]int64

	Balances    []calculator.MemberBalance
	Settlements []calculator.DebtEdge
}

// Create creates a bill owned by the caller.
func (s *BillService) Create(ctx context.Context, caller int64, name, label string) (*models.Bill, error) {
	name, err := requireText("name", name, maxNameLength)
	if err != nil {
		return nil, err
	}
	label, err = optionalText("label", label, maxLabelLength)
	if err != nil {
		return nil, err
	}

	bill := &models.Bill{Name: name, Label: label, CreatorID: caller}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		s.logger.Error("CreateBill failed", "user_id", caller, "error", err)
		return nil, apperr.Internal(err)
	}

	s.logger.Info("Bill created", "bill_id", bill.ID, "user_id", caller)
	return bill, nil
}

// NormalizePage applies defaults and bounds to pagination input.
func NormalizePage(page, perPage int) (models.Page, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return models.Page{}, apperr.Validation("page must be at least 1")
	}
	if perPage < 1 || perPage > MaxPerPage {
		return models.Page{}, apperr.Validation("perPage must be between 1 and %d", MaxPerPage)
	}
	return models.Page{Number: page, PerPage: perPage}, nil
}

// ListCreated lists the bills the caller created, newest first.
func (s *BillService) ListCreated(ctx context.Context, caller int64, page models.Page) (*BillPage, error) {
	bills, total, err := s.store.ListCreatedBills(ctx, caller, page)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return newBillPage(bills, RoleCreator, total, page), nil
}

// ListAssigned lists the bills the caller is a member of, newest first.
func (s *BillService) ListAssigned(ctx context.Context, caller int64, page models.Page) (*BillPage, error) {
	bills, total, err := s.store.ListAssignedBills(ctx, caller, page)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return newBillPage(bills, RoleParticipant, total, page), nil
}

func newBillPage(bills []models.BillSummary, role string, total int, page models.Page) *BillPage {
	return &BillPage{
		Bills:       bills,
		Role:        role,
		TotalItems:  total,
		CurrentPage: page.Number,
		TotalPages:  page.TotalPages(total),
	}
}

// Details returns the bill with participants, expenses and balances.
func (s *BillService) Details(ctx context.Context, caller, billID int64) (*BillDetails, error) {
	bill, err := loadBillForParticipant(ctx, s.store, billID, caller)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListBillExpenses(ctx, billID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	ids := bill.ParticipantIDs()
	input := make([]calculator.ExpenseForBalance, len(expenses))
	totals := make(map[string]int64)
	for i, e := range expenses {
		ids = append(ids, e.UserIDs()...)
		input[i] = calculator.FromExpense(e)
		totals[e.Currency] += e.Price
	}

	people, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	balances, settlements := calculator.SettleUp(input)

	details := &BillDetails{
		Bill:        bill,
		Creator:     people[bill.CreatorID],
		Members:     usersInOrder(people, bill.Members),
		Expenses:    expenses,
		People:      people,
		Totals:      totals,
		Balances:    balances,
		Settlements: settlements,
	}
	return details, nil
}

// Update changes the bill name and label. Creator only.
func (s *BillService) Update(ctx context.Context, caller, billID int64, name, label string) (*models.Bill, error) {
	bill, err := loadBillForCreator(ctx, s.store, billID, caller)
	if err != nil {
		return nil, err
	}
	if bill.Name, err = requireText("name", name, maxNameLength); err != nil {
		return nil, err
	}
	if bill.Label, err = optionalText("label", label, maxLabelLength); err != nil {
		return nil, err
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, storeError(err, "bill")
	}
	s.logger.Info("Bill updated", "bill_id", billID, "user_id", caller)
	return bill, nil
}

// Delete deletes the bill with its expenses, memberships and invitations.
// Creator only.
func (s *BillService) Delete(ctx context.Context, caller, billID int64) error {
	if _, err := loadBillForCreator(ctx, s.store, billID, caller); err != nil {
		return err
	}

	expenses, err := s.store.ListBillExpenses(ctx, billID)
	if err != nil {
		return apperr.Internal(err)
	}
	var affected []int64
	for _, e := range expenses {
		affected = append(affected, e.UserIDs()...)
	}

	if err := s.store.DeleteBill(ctx, billID); err != nil {
		s.logger.Error("DeleteBill failed", "bill_id", billID, "error", err)
		return storeError(err, "bill")
	}
	s.debts.Invalidate(ctx, uniqueIDs(affected)...)

	s.logger.Info("Bill deleted", "bill_id", billID, "user_id", caller, "expenses", len(expenses))
	return nil
}

// Participants returns the creator followed by the members.
func (s *BillService) Participants(ctx context.Context, caller, billID int64) ([]*models.User, error) {
	bill, err := loadBillForParticipant(ctx, s.store, billID, caller)
	if err != nil {
		return nil, err
	}
	ids := bill.ParticipantIDs()
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return usersInOrder(users, ids), nil
}

// AvailableFriends lists the caller's friends who are not yet participants
// and have no pending invitation to the bill.
func (s *BillService) AvailableFriends(ctx context.Context, caller, billID int64) ([]*models.User, error) {
	bill, err := loadBillForParticipant(ctx, s.store, billID, caller)
	if err != nil {
		return nil, err
	}

	friendIDs, err := s.store.ListFriendIDs(ctx, caller)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	var available []int64
	for _, id := range friendIDs {
		if bill.IsParticipant(id) {
			continue
		}
		pending, err := s.store.HasPendingBillInvitation(ctx, billID, id)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if !pending {
			available = append(available, id)
		}
	}

	users, err := s.store.GetUsersByIDs(ctx, available)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return usersInOrder(users, available), nil
}

// RemoveParticipant removes a member from the bill. Creator only.
// Shares the member already holds stay in place.
func (s *BillService) RemoveParticipant(ctx context.Context, caller, billID, userID int64) error {
	bill, err := loadBillForCreator(ctx, s.store, billID, caller)
	if err != nil {
		return err
	}
	if userID == bill.CreatorID {
		return apperr.Validation("the creator cannot be removed from the bill")
	}
	if err := s.store.RemoveBillMember(ctx, billID, userID); err != nil {
		return storeError(err, "participant")
	}
	s.logger.Info("Participant removed", "bill_id", billID, "removed_user_id", userID, "user_id", caller)
	return nil
}

// usersInOrder picks users by id, skipping ids that do not resolve.
func usersInOrder(users map[int64]*models.User, ids []int64) []*models.User {
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			out = append(out, u)
		}
	}
	return out
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
