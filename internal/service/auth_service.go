package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// AuthStore is the persistence AuthService needs.
type AuthStore interface {
	storage.UserStore
	storage.TokenStore
}

// AuthService registers users and issues, refreshes and revokes tokens.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         AuthStore
	isAdminMail   func(mail string) bool
	logger        *slog.Logger
}

// Tokens is the result of a successful login or registration.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Surname  string
	Mail     string
	Password string
}

// NewAuthService creates a new authentication service.
// isAdminMail decides which new accounts start as admins; it may be nil.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store AuthStore, isAdminMail func(string) bool, logger *slog.Logger) *AuthService {
	if isAdminMail == nil {
		isAdminMail = func(string) bool { return false }
	}
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
		isAdminMail:   isAdminMail,
		logger:        logger,
	}
}

// validMail normalizes mail and checks it is a bare address.
func validMail(value string) (string, error) {
	normalized := models.NormalizeMail(value)
	if normalized == "" {
		return "", apperr.Validation("mail is required")
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", apperr.Validation("mail is not a valid email address")
	}
	return normalized, nil
}

// Register creates a new user account and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Tokens, error) {
	s.logger.Info("Register request", "mail", in.Mail)

	name, err := requireText("name", in.Name, maxNameLength)
	if err != nil {
		return nil, err
	}
	surname, err := requireText("surname", in.Surname, maxNameLength)
	if err != nil {
		return nil, err
	}
	address, err := validMail(in.Mail)
	if err != nil {
		return nil, err
	}

	user, err := s.authenticator.Register(ctx, auth.Registration{
		Name:    name,
		Surname: surname,
		Mail:    address,
		Admin:   s.isAdminMail(address),
	}, in.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "mail", address, "error", err)
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			return nil, apperr.Conflict(apperr.ReasonEmailTaken, "email already registered")
		case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrPasswordTooLong):
			return nil, apperr.Validation("%s", err.Error())
		default:
			return nil, apperr.Internal(err)
		}
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User registered successfully", "user_id", user.ID, "admin", user.Admin)
	return tokens, nil
}

// Login authenticates a user and returns a token pair.
func (s *AuthService) Login(ctx context.Context, mailAddr, password string) (*Tokens, error) {
	s.logger.Info("Login request", "mail", mailAddr)

	user, err := s.authenticator.Authenticate(ctx, mailAddr, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("Login failed", "mail", mailAddr)
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, apperr.Internal(err)
	}

	tokens, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Login successful", "user_id", user.ID)
	return tokens, nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*Tokens, error) {
	access, err := s.jwtManager.GenerateAccess(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := s.jwtManager.GenerateRefresh(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.store.SaveRefreshToken(ctx, refresh.ID, user.ID, refresh.ExpiresAt.Unix()); err != nil {
		return nil, apperr.Internal(err)
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh.Token, User: user}, nil
}

// Refresh exchanges a refresh token for a new access token.
// The access token carries the user's current admin flag.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtManager.Validate(refreshToken, auth.TokenRefresh)
	if err != nil {
		return "", apperr.Unauthorized("invalid refresh token")
	}

	active, err := s.store.RefreshTokenActive(ctx, claims.ID, claims.UserID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if !active {
		s.logger.Warn("Revoked refresh token used", "user_id", claims.UserID)
		return "", apperr.Unauthorized("refresh token revoked")
	}

	user, err := s.store.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", apperr.Unauthorized("user no longer exists")
	}
	if err != nil {
		return "", apperr.Internal(err)
	}

	access, err := s.jwtManager.GenerateAccess(user)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return access, nil
}

// Logout revokes every refresh token of the caller.
func (s *AuthService) Logout(ctx context.Context, caller int64) error {
	if err := s.store.RevokeRefreshTokens(ctx, caller); err != nil {
		return apperr.Internal(err)
	}
	s.logger.Info("User logged out", "user_id", caller)
	return nil
}
