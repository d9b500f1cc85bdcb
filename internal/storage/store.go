// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"
	"errors"

	"github.com/natalia11920/pairpay/internal/models"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write violates a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrNotPending is returned when a request or invitation was already
	// accepted or declined by the time a transition was attempted.
	ErrNotPending = errors.New("not pending")
)

// UserStore persists user accounts.
type UserStore interface {
	// CreateUser inserts a user and populates user.ID.
	// Returns ErrConflict if the mail is already registered.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByMail(ctx context.Context, mail string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error)

	// UpdateUser writes name, surname, mail and admin flag.
	UpdateUser(ctx context.Context, user *models.User) error

	// ListUserMails returns every mail except excludeID's, sorted.
	ListUserMails(ctx context.Context, excludeID int64) ([]string, error)
}

// TokenStore tracks issued refresh tokens so they can be revoked on logout.
type TokenStore interface {
	SaveRefreshToken(ctx context.Context, tokenID string, userID int64, expiresAt int64) error
	RefreshTokenActive(ctx context.Context, tokenID string, userID int64) (bool, error)
	RevokeRefreshTokens(ctx context.Context, userID int64) error
}

// FriendStore persists friend requests and friendships.
type FriendStore interface {
	CreateFriendRequest(ctx context.Context, req *models.FriendRequest) error
	GetFriendRequest(ctx context.Context, id int64) (*models.FriendRequest, error)

	// HasPendingFriendRequest reports a pending request in either direction.
	HasPendingFriendRequest(ctx context.Context, a, b int64) (bool, error)
	ListPendingFriendRequests(ctx context.Context, targetID int64) ([]models.PendingFriendRequest, error)

	// ResolveFriendRequest moves a pending request to status. Accepting
	// creates the friendship in the same transaction.
	// Returns ErrNotPending if the request was already resolved.
	ResolveFriendRequest(ctx context.Context, id int64, status models.Status) error

	AreFriends(ctx context.Context, a, b int64) (bool, error)
	ListFriendIDs(ctx context.Context, userID int64) ([]int64, error)
}

// BillStore persists bills and their membership.
type BillStore interface {
	// CreateBill persists a new bill and populates bill.ID.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a bill with its members.
	GetBill(ctx context.Context, billID int64) (*models.Bill, error)

	// UpdateBill writes the bill name and label.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes the bill together with its expenses, shares,
	// memberships and invitations.
	DeleteBill(ctx context.Context, billID int64) error

	ListCreatedBills(ctx context.Context, userID int64, page models.Page) ([]models.BillSummary, int, error)
	ListAssignedBills(ctx context.Context, userID int64, page models.Page) ([]models.BillSummary, int, error)

	// RemoveBillMember returns ErrNotFound if userID is not a member.
	RemoveBillMember(ctx context.Context, billID, userID int64) error
}

// InvitationStore persists bill invitations.
type InvitationStore interface {
	// CreateBillInvitations inserts all invitations or none.
	// Returns ErrConflict if one of them is already pending.
	CreateBillInvitations(ctx context.Context, invitations []*models.BillInvitation) error
	GetBillInvitation(ctx context.Context, id int64) (*models.BillInvitation, error)
	HasPendingBillInvitation(ctx context.Context, billID, inviteeID int64) (bool, error)
	ListPendingBillInvitations(ctx context.Context, inviteeID int64) ([]models.PendingBillInvitation, error)

	// ResolveBillInvitation moves a pending invitation to status. Accepting
	// adds the invitee to the bill in the same transaction.
	// Returns ErrNotPending if the invitation was already resolved.
	ResolveBillInvitation(ctx context.Context, id int64, status models.Status) error
}

// ExpenseStore persists expenses and participant shares.
type ExpenseStore interface {
	// CreateExpense writes the expense and all of its shares atomically
	// and populates expense.ID.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID int64) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID int64) error
	ListBillExpenses(ctx context.Context, billID int64) ([]*models.Expense, error)

	// ListExpensesInvolving returns every expense userID paid or holds a share of.
	ListExpensesInvolving(ctx context.Context, userID int64) ([]*models.Expense, error)
}

// Store defines the full Ledger Store.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	TokenStore
	FriendStore
	BillStore
	InvitationStore
	ExpenseStore

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
