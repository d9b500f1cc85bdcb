// Package service implements the ledger engine: accounts, friendships,
// bills, invitations, expenses and balances. Services are transport
// agnostic; callers pass the authenticated user id and get apperr errors.
package service

import (
	"log/slog"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/internal/cache"
	"github.com/natalia11920/pairpay/internal/storage"
)

// Services bundles every service the transports need.
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Friends       *FriendService
	Bills         *BillService
	Invitations   *InvitationService
	Expenses      *ExpenseService
	Debts         *DebtService
	Notifications *NotificationService
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Store         storage.Store
	Cache         cache.BalanceCache
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	IsAdminMail   func(string) bool
	Logger        *slog.Logger
}

// New wires the services together.
func New(deps Deps) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	debts := NewDebtService(deps.Store, deps.Cache, logger)
	friends := NewFriendService(deps.Store, debts, logger)
	invitations := NewInvitationService(deps.Store, logger)

	return &Services{
		Auth:          NewAuthService(deps.Authenticator, deps.JWT, deps.Store, deps.IsAdminMail, logger),
		Users:         NewUserService(deps.Store, logger),
		Friends:       friends,
		Bills:         NewBillService(deps.Store, debts, logger),
		Invitations:   invitations,
		Expenses:      NewExpenseService(deps.Store, debts, logger),
		Debts:         debts,
		Notifications: NewNotificationService(friends, invitations),
	}
}
