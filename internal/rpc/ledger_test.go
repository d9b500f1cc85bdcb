package rpc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/internal/cache"
	"github.com/natalia11920/pairpay/internal/service"
	"github.com/natalia11920/pairpay/internal/storage/sqlite"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

const testSecret = "test-secret-key-with-at-least-32-characters"

type ledgerClient struct {
	getBalances  *connect.Client[GetBalancesRequest, GetBalancesResponse]
	previewSplit *connect.Client[PreviewSplitRequest, PreviewSplitResponse]
}

func setupTestServer(t *testing.T) (*service.Services, *ledgerClient) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "rpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwt := auth.NewJWTManager(testSecret, 15*time.Minute, time.Hour)
	svc := service.New(service.Deps{
		Store:         store,
		Cache:         cache.NewMemory(time.Minute),
		Authenticator: auth.NewPasswordAuthenticator(store, bcrypt.MinCost),
		JWT:           jwt,
		IsAdminMail:   func(string) bool { return false },
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	path, handler := NewHandler(NewLedgerServer(svc.Debts), jwt)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := &ledgerClient{
		getBalances: connect.NewClient[GetBalancesRequest, GetBalancesResponse](
			server.Client(), server.URL+LedgerServiceGetBalancesProcedure, connect.WithCodec(Codec{})),
		previewSplit: connect.NewClient[PreviewSplitRequest, PreviewSplitResponse](
			server.Client(), server.URL+LedgerServicePreviewSplitProcedure, connect.WithCodec(Codec{})),
	}
	return svc, client
}

func authorized[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

func register(t *testing.T, svc *service.Services, mail string) *service.Tokens {
	t.Helper()
	tokens, err := svc.Auth.Register(context.Background(), service.RegisterInput{
		Name: "Test", Surname: "User", Mail: mail, Password: "password123",
	})
	require.NoError(t, err)
	return tokens
}

func TestGetBalances(t *testing.T) {
	svc, client := setupTestServer(t)
	ctx := context.Background()

	a := register(t, svc, "a@example.com")
	b := register(t, svc, "b@example.com")

	req, err := svc.Friends.SendRequest(ctx, a.User.ID, b.User.Mail)
	require.NoError(t, err)
	require.NoError(t, svc.Friends.Accept(ctx, b.User.ID, req.ID))
	bill, err := svc.Bills.Create(ctx, a.User.ID, "Trip", "Travel")
	require.NoError(t, err)
	invs, err := svc.Invitations.InviteUsers(ctx, a.User.ID, bill.ID, []string{b.User.Mail})
	require.NoError(t, err)
	require.NoError(t, svc.Invitations.Accept(ctx, b.User.ID, invs[0].ID))
	_, err = svc.Expenses.Create(ctx, a.User.ID, bill.ID, service.ExpenseInput{
		Name: "Dinner", Price: 3000, Currency: "USD", PayerID: a.User.ID,
		Participants: []int64{a.User.ID, b.User.ID},
	})
	require.NoError(t, err)

	resp, err := client.getBalances.CallUnary(ctx, authorized(&GetBalancesRequest{}, b.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, b.User.ID, resp.Msg.UserID)
	assert.Equal(t, "-15.00", resp.Msg.Totals["USD"].String())
	require.Len(t, resp.Msg.Friends, 1)
	assert.Equal(t, a.User.ID, resp.Msg.Friends[0].FriendID)
	require.Len(t, resp.Msg.Friends[0].Debts, 1)
	assert.Equal(t, "15.00", resp.Msg.Friends[0].Debts[0].OwedToFriend.String())
}

func TestGetBalancesRequiresAuth(t *testing.T) {
	svc, client := setupTestServer(t)
	tokens := register(t, svc, "a@example.com")

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage", "not-a-token"},
		{"refresh token", tokens.RefreshToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.getBalances.CallUnary(context.Background(), authorized(&GetBalancesRequest{}, tt.token))
			require.Error(t, err)
			assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
		})
	}
}

func TestPreviewSplit(t *testing.T) {
	svc, client := setupTestServer(t)
	tokens := register(t, svc, "a@example.com")

	resp, err := client.previewSplit.CallUnary(context.Background(), authorized(&PreviewSplitRequest{
		Price:          100,
		ParticipantIDs: []int64{7, 3, 5},
	}, tokens.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, []Share{
		{UserID: 3, AmountOwed: 34},
		{UserID: 5, AmountOwed: 33},
		{UserID: 7, AmountOwed: 33},
	}, resp.Msg.Shares)

	_, err = client.previewSplit.CallUnary(context.Background(), authorized(&PreviewSplitRequest{
		Price: 100,
	}, tokens.AccessToken))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err    error
		code   connect.Code
		reason string
	}{
		{apperr.Validation("bad"), connect.CodeInvalidArgument, ""},
		{apperr.Unauthorized("who"), connect.CodeUnauthenticated, ""},
		{apperr.Forbidden("no"), connect.CodePermissionDenied, ""},
		{apperr.NotFound("gone"), connect.CodeNotFound, ""},
		{apperr.Conflict(apperr.ReasonDuplicateInvitation, "dup"), connect.CodeAlreadyExists, apperr.ReasonDuplicateInvitation},
		{apperr.Conflict(apperr.ReasonAlreadyTerminal, "done"), connect.CodeFailedPrecondition, apperr.ReasonAlreadyTerminal},
		{errors.New("boom"), connect.CodeInternal, ""},
	}
	for _, tt := range tests {
		err := toConnectError(tt.err)
		var connectErr *connect.Error
		require.ErrorAs(t, err, &connectErr)
		assert.Equal(t, tt.code, connectErr.Code(), "%v", tt.err)
		assert.Equal(t, tt.reason, connectErr.Meta().Get(ReasonHeader))
	}

	err := toConnectError(errors.New("secret detail"))
	assert.NotContains(t, err.Error(), "secret detail")
}
