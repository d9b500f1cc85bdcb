package client

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/internal/cache"
	"github.com/natalia11920/pairpay/internal/httpapi"
	"github.com/natalia11920/pairpay/internal/money"
	"github.com/natalia11920/pairpay/internal/service"
	"github.com/natalia11920/pairpay/internal/storage/sqlite"
)

func startServer(t *testing.T) string {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwt := auth.NewJWTManager("client-test-secret-with-32-characters!!", 15*time.Minute, time.Hour)
	svc := service.New(service.Deps{
		Store:         store,
		Cache:         cache.NewMemory(time.Minute),
		Authenticator: auth.NewPasswordAuthenticator(store, bcrypt.MinCost),
		JWT:           jwt,
		IsAdminMail:   func(string) bool { return false },
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	server := httptest.NewServer(httpapi.NewRouter(httpapi.Options{Services: svc, JWT: jwt}))
	t.Cleanup(server.Close)
	return server.URL
}

func TestClientAgainstServer(t *testing.T) {
	url := startServer(t)
	ctx := context.Background()

	ann, bob := New(url), New(url)
	annSession, err := ann.Register(ctx, "Ann", "Lee", "ann@example.com", "password123")
	require.NoError(t, err)
	bobSession, err := bob.Register(ctx, "Bob", "Ray", "bob@example.com", "password123")
	require.NoError(t, err)

	requestID, err := ann.SendFriendRequest(ctx, "bob@example.com")
	require.NoError(t, err)
	pending, err := bob.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, requestID, pending[0].ID)
	require.NoError(t, bob.AcceptFriendRequest(ctx, requestID))

	bill, err := ann.CreateBill(ctx, "Trip", "Travel")
	require.NoError(t, err)
	require.NoError(t, ann.InviteUsers(ctx, bill.ID, []string{"bob@example.com"}))

	notifications, err := bob.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	require.Equal(t, KindBillInvitation, notifications[0].Kind)
	require.NoError(t, bob.AcceptInvitation(ctx, notifications[0].BillInvitation.InvitationID))

	price, err := money.Parse("1.00")
	require.NoError(t, err)
	expense, err := bob.CreateExpense(ctx, bill.ID, NewExpense{
		Name:         "Coffee",
		Price:        price,
		Currency:     "EUR",
		Payer:        bobSession.User.ID,
		Participants: []int64{annSession.User.ID, bobSession.User.ID},
	})
	require.NoError(t, err)
	assert.Len(t, expense.Shares, 2)

	balances, err := ann.Balances(ctx)
	require.NoError(t, err)
	assert.Equal(t, "-0.50", balances.Balance.String())
	assert.Equal(t, "EUR", balances.Currency)

	err = bob.DeleteExpense(ctx, expense.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)

	details, err := bob.Bill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", details.Name)
	require.Len(t, details.Expenses, 1)

	require.NoError(t, ann.Logout(ctx))
	assert.Nil(t, ann.Session())
	_, err = ann.Me(ctx)
	assert.ErrorIs(t, err, ErrNoSession)
}
