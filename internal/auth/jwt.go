package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/natalia11920/pairpay/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
	ErrWrongType    = errors.New("wrong token type")
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// JWTManager handles JWT token generation and validation.
type JWTManager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Claims represents the custom JWT claims for a user session.
// RegisteredClaims.ID holds the token id used to revoke refresh tokens.
type Claims struct {
	UserID int64     `json:"user_id"`
	Mail   string    `json:"mail"`
	Admin  bool      `json:"admin"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshToken is a signed refresh token with the id and expiry it was issued with.
type RefreshToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// NewJWTManager creates a new JWT manager with the given secret and token lifetimes.
// secretKey should be a strong random string (at least 32 bytes).
func NewJWTManager(secretKey string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// GenerateAccess creates a short-lived access token for the given user.
func (m *JWTManager) GenerateAccess(user *models.User) (string, error) {
	token, _, err := m.sign(user, TokenAccess, m.accessTTL)
	return token, err
}

// GenerateRefresh creates a refresh token for the given user.
func (m *JWTManager) GenerateRefresh(user *models.User) (*RefreshToken, error) {
	token, claims, err := m.sign(user, TokenRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &RefreshToken{
		Token:     token,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (m *JWTManager) sign(user *models.User, typ TokenType, ttl time.Duration) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID: user.ID,
		Mail:   user.Mail,
		Admin:  user.Admin,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, claims, nil
}

// Validate parses and validates a JWT token of the wanted type, returning the claims if valid.
func (m *JWTManager) Validate(tokenString string, want TokenType) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			// Verify the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongType, claims.Type, want)
	}

	return claims, nil
}
