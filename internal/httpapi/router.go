// Package httpapi exposes the ledger services as the REST/JSON API the
// PairPay web client consumes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/internal/middleware"
	"github.com/natalia11920/pairpay/internal/service"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

const maxBodyBytes = 1 << 20

// Options configures the router.
type Options struct {
	Services *service.Services
	JWT      *auth.JWTManager

	// Metrics and Limiter are optional.
	Metrics *middleware.Metrics
	Limiter *middleware.RateLimiter

	MetricsUser string
	MetricsPass string
	CORSOrigins []string

	// Ping reports storage health for /health.
	Ping func(ctx context.Context) error

	// RPCPath and RPCHandler mount the Connect service next to the REST API.
	RPCPath    string
	RPCHandler http.Handler
}

type api struct {
	svc *service.Services
	jwt *auth.JWTManager
}

// NewRouter builds the HTTP handler serving the REST API, health and metrics.
func NewRouter(opts Options) http.Handler {
	a := &api{svc: opts.Services, jwt: opts.JWT}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, apperr.NotFound("route not found"))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusMethodNotAllowed, middleware.ErrorBody{
			Message: "method not allowed",
			Code:    apperr.CodeValidation,
		})
	})

	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Handle("/metrics", middleware.BasicAuth(opts.MetricsUser, opts.MetricsPass, opts.Metrics.Handler())).
			Methods(http.MethodGet)
	}
	router.HandleFunc("/health", healthHandler(opts.Ping)).Methods(http.MethodGet)

	if opts.RPCHandler != nil {
		rpc := opts.RPCHandler
		if opts.Limiter != nil {
			rpc = opts.Limiter.Middleware(rpc)
		}
		router.PathPrefix(opts.RPCPath).Handler(rpc)
	}

	apiRouter := router.PathPrefix("/api").Subrouter()
	if opts.Limiter != nil {
		apiRouter.Use(opts.Limiter.Middleware)
	}

	// Public routes
	apiRouter.HandleFunc("/login", a.login).Methods(http.MethodPost)
	apiRouter.HandleFunc("/register", a.register).Methods(http.MethodPost)
	apiRouter.HandleFunc("/refresh", a.refresh).Methods(http.MethodPost)

	protected := apiRouter.NewRoute().Subrouter()
	protected.Use(middleware.Authenticate(opts.JWT))

	protected.HandleFunc("/logout", a.logout).Methods(http.MethodDelete)

	protected.HandleFunc("/user", a.me).Methods(http.MethodGet)
	protected.HandleFunc("/user", a.updateSelf).Methods(http.MethodPut)
	protected.HandleFunc("/user/get_users_emails", a.userMails).Methods(http.MethodGet)
	protected.HandleFunc("/user/search", a.searchUser).Methods(http.MethodPost)
	protected.HandleFunc("/user/{id:[0-9]+}", a.adminUpdateUser).Methods(http.MethodPut)
	protected.HandleFunc("/user/{id:[0-9]+}/make-admin", a.makeAdmin).Methods(http.MethodPost)

	protected.HandleFunc("/create-bill", a.createBill).Methods(http.MethodPost)
	protected.HandleFunc("/bills/created", a.listCreatedBills).Methods(http.MethodGet)
	protected.HandleFunc("/bills/assigned", a.listAssignedBills).Methods(http.MethodGet)
	protected.HandleFunc("/bills/{id:[0-9]+}", a.billDetails).Methods(http.MethodGet)
	protected.HandleFunc("/bills/{id:[0-9]+}", a.updateBill).Methods(http.MethodPut)
	protected.HandleFunc("/bills/{id:[0-9]+}", a.deleteBill).Methods(http.MethodDelete)
	protected.HandleFunc("/bills/{id:[0-9]+}/invite-users", a.inviteUsers).Methods(http.MethodPost)
	protected.HandleFunc("/bills/{id:[0-9]+}/available-friends", a.availableFriends).Methods(http.MethodGet)
	protected.HandleFunc("/bills/{id:[0-9]+}/participants", a.participants).Methods(http.MethodGet)
	protected.HandleFunc("/bills/{id:[0-9]+}/participant/{userId:[0-9]+}", a.removeParticipant).Methods(http.MethodDelete)

	protected.HandleFunc("/bill/{id:[0-9]+}/expense/create", a.createExpense).Methods(http.MethodPost)
	protected.HandleFunc("/bill/{id:[0-9]+}/expenses/{expenseId:[0-9]+}", a.expenseDetails).Methods(http.MethodGet)
	protected.HandleFunc("/bill/expense/{expenseId:[0-9]+}", a.deleteExpense).Methods(http.MethodDelete)

	protected.HandleFunc("/friends", a.friends).Methods(http.MethodGet)
	protected.HandleFunc("/send_request", a.sendFriendRequest).Methods(http.MethodPost)
	protected.HandleFunc("/pending_requests", a.pendingRequests).Methods(http.MethodGet)
	protected.HandleFunc("/accept_request/{id:[0-9]+}", a.acceptFriendRequest).Methods(http.MethodPost)
	protected.HandleFunc("/decline_request/{id:[0-9]+}", a.declineFriendRequest).Methods(http.MethodPost)

	protected.HandleFunc("/invitations", a.billInvitations).Methods(http.MethodGet)
	protected.HandleFunc("/invitations/{id:[0-9]+}/accept", a.acceptBillInvitation).Methods(http.MethodPost)
	protected.HandleFunc("/invitations/{id:[0-9]+}/decline", a.declineBillInvitation).Methods(http.MethodPost)
	protected.HandleFunc("/notifications", a.notifications).Methods(http.MethodGet)

	protected.HandleFunc("/debt/balances", a.debtBalances).Methods(http.MethodGet)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"}),
		handlers.ExposedHeaders([]string{"Connect-Protocol-Version", "Connect-Timeout-Ms"}),
	)
	return middleware.RequestLogger(cors(router))
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				slog.Error("Health check failed", "error", err)
				middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// caller returns the authenticated user. Routes using it sit behind
// middleware.Authenticate.
func caller(r *http.Request) int64 {
	id, _ := middleware.GetUserID(r.Context())
	return id
}

// decode reads a JSON body into v.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid request body: %s", err.Error())
	}
	return nil
}

// pathID parses the named path variable.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter; missing means zero.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", name)
	}
	return v, nil
}

func ok(w http.ResponseWriter, message string) {
	middleware.WriteJSON(w, http.StatusOK, messageResponse{Message: message})
}
