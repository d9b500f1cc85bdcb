package middleware

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// MailKey is the context key for storing the authenticated user's mail.
	MailKey contextKey = "mail"
)

// WithUser returns ctx carrying the authenticated user.
func WithUser(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, MailKey, claims.Mail)
}

// GetUserID extracts the user ID from the context.
// Returns false if the request is not authenticated.
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetMail extracts the user mail from the context.
// Returns empty string if not found.
func GetMail(ctx context.Context) string {
	mail, _ := ctx.Value(MailKey).(string)
	return mail
}

// BearerToken parses an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// authenticate validates the access token carried by header.
func authenticate(jwtManager *auth.JWTManager, header string) (*auth.Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	return jwtManager.Validate(token, auth.TokenAccess)
}

// RequireAuth returns a Connect interceptor that validates the access token
// in the Authorization header and adds the user to the request context.
func RequireAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			claims, err := authenticate(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(WithUser(ctx, claims), req)
		}
	}
}

// Authenticate is RequireAuth for plain HTTP handlers. Requests without a
// valid access token are answered with 401.
func Authenticate(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(jwtManager, r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, apperr.Wrap(err, apperr.CodeUnauthorized, "invalid or missing access token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}
