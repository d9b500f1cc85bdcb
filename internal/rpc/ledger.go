// Package rpc serves the LedgerService Connect API: balance lookups and
// split previews for clients that prefer RPC over the REST surface.
package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/internal/middleware"
	"github.com/natalia11920/pairpay/internal/money"
	"github.com/natalia11920/pairpay/internal/service"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

const (
	// LedgerServiceName is the fully-qualified name of the LedgerService service.
	LedgerServiceName = "pairpay.v1.LedgerService"

	// LedgerServiceGetBalancesProcedure is the procedure path of LedgerService.GetBalances.
	LedgerServiceGetBalancesProcedure = "/pairpay.v1.LedgerService/GetBalances"
	// LedgerServicePreviewSplitProcedure is the procedure path of LedgerService.PreviewSplit.
	LedgerServicePreviewSplitProcedure = "/pairpay.v1.LedgerService/PreviewSplit"
)

// LedgerServer implements LedgerService on top of the debt service.
type LedgerServer struct {
	debts *service.DebtService
}

// NewLedgerServer creates a new LedgerServer.
func NewLedgerServer(debts *service.DebtService) *LedgerServer {
	return &LedgerServer{debts: debts}
}

// GetBalances returns the caller's balances per friend and currency.
func (s *LedgerServer) GetBalances(
	ctx context.Context,
	req *connect.Request[GetBalancesRequest],
) (*connect.Response[GetBalancesResponse], error) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	sheet, err := s.debts.Balances(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &GetBalancesResponse{
		UserID:  sheet.UserID,
		Totals:  make(map[string]money.Amount, len(sheet.Totals)),
		Friends: make([]FriendBalance, 0, len(sheet.Friends)),
	}
	for currency, v := range sheet.Totals {
		resp.Totals[currency] = money.Amount(v)
	}
	for _, f := range sheet.Friends {
		fb := FriendBalance{FriendID: f.FriendID, Debts: make([]Debt, 0, len(f.Debts))}
		for _, d := range f.Debts {
			fb.Debts = append(fb.Debts, Debt{
				Currency:     d.Currency,
				NetDebt:      money.Amount(d.NetDebt),
				OwedToFriend: money.Amount(d.OwedToFriend),
				OwedToUser:   money.Amount(d.OwedToUser),
			})
		}
		resp.Friends = append(resp.Friends, fb)
	}
	return connect.NewResponse(resp), nil
}

// PreviewSplit computes an equal split without storing anything.
func (s *LedgerServer) PreviewSplit(
	ctx context.Context,
	req *connect.Request[PreviewSplitRequest],
) (*connect.Response[PreviewSplitResponse], error) {
	shares, err := service.PreviewSplit(int64(req.Msg.Price), req.Msg.ParticipantIDs)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &PreviewSplitResponse{Shares: make([]Share, 0, len(shares))}
	for _, sh := range shares {
		resp.Shares = append(resp.Shares, Share{UserID: sh.UserID, AmountOwed: money.Amount(sh.AmountOwed)})
	}
	return connect.NewResponse(resp), nil
}

// NewHandler builds the HTTP handler serving LedgerService and returns the
// path to mount it on. Every call requires a valid access token.
func NewHandler(server *LedgerServer, jwtManager *auth.JWTManager, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{
		connect.WithCodec(Codec{}),
		connect.WithInterceptors(
			middleware.LoggingInterceptor(),
			middleware.RequireAuth(jwtManager),
		),
	}, opts...)

	mux := http.NewServeMux()
	mux.Handle(LedgerServiceGetBalancesProcedure, connect.NewUnaryHandler(
		LedgerServiceGetBalancesProcedure,
		server.GetBalances,
		opts...,
	))
	mux.Handle(LedgerServicePreviewSplitProcedure, connect.NewUnaryHandler(
		LedgerServicePreviewSplitProcedure,
		server.PreviewSplit,
		opts...,
	))
	return "/" + LedgerServiceName + "/", mux
}

// ReasonHeader carries the conflict reason of an error response.
const ReasonHeader = "Pairpay-Reason"

// toConnectError maps an application error to a Connect status.
func toConnectError(err error) error {
	var code connect.Code
	switch apperr.CodeOf(err) {
	case apperr.CodeValidation:
		code = connect.CodeInvalidArgument
	case apperr.CodeUnauthorized:
		code = connect.CodeUnauthenticated
	case apperr.CodeForbidden:
		code = connect.CodePermissionDenied
	case apperr.CodeNotFound:
		code = connect.CodeNotFound
	case apperr.CodeConflict:
		code = connect.CodeAlreadyExists
		if apperr.ReasonOf(err) == apperr.ReasonAlreadyTerminal {
			code = connect.CodeFailedPrecondition
		}
	case apperr.CodeRateLimitExceeded:
		code = connect.CodeResourceExhausted
	default:
		slog.Error("LedgerService call failed", "error", err)
		code = connect.CodeInternal
	}

	connectErr := connect.NewError(code, errors.New(apperr.PublicMessage(err)))
	if reason := apperr.ReasonOf(err); reason != "" {
		connectErr.Meta().Set(ReasonHeader, reason)
	}
	return connectErr
}
