package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// UserService manages user profiles.
type UserService struct {
	store  storage.UserStore
	logger *slog.Logger
}

// NewUserService creates a new UserService with the given storage backend.
func NewUserService(store storage.UserStore, logger *slog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// UserUpdate holds profile changes. Empty fields are left unchanged.
type UserUpdate struct {
	Name    string
	Surname string
	Mail    string
}

// Me returns the caller's profile.
func (s *UserService) Me(ctx context.Context, caller int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, caller)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// UpdateSelf changes the caller's own profile.
func (s *UserService) UpdateSelf(ctx context.Context, caller int64, update UserUpdate) (*models.User, error) {
	return s.update(ctx, caller, update)
}

// ListMails returns the mail of every other user, for invitation autocompletion.
func (s *UserService) ListMails(ctx context.Context, caller int64) ([]string, error) {
	mails, err := s.store.ListUserMails(ctx, caller)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return mails, nil
}

// Search finds a user by mail. Admin only.
func (s *UserService) Search(ctx context.Context, caller int64, mailAddr string) (*models.User, error) {
	if _, err := loadAdmin(ctx, s.store, caller); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByMail(ctx, models.NormalizeMail(mailAddr))
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

// AdminUpdate changes another user's profile. Admin only.
func (s *UserService) AdminUpdate(ctx context.Context, caller, userID int64, update UserUpdate) (*models.User, error) {
	if _, err := loadAdmin(ctx, s.store, caller); err != nil {
		return nil, err
	}
	user, err := s.update(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	s.logger.Info("User updated by admin", "admin_id", caller, "user_id", userID)
	return user, nil
}

// MakeAdmin grants admin privileges to userID. Admin only.
func (s *UserService) MakeAdmin(ctx context.Context, caller, userID int64) (*models.User, error) {
	if _, err := loadAdmin(ctx, s.store, caller); err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if user.Admin {
		return user, nil
	}
	user.Admin = true
	user.UpdatedAt = time.Now().Unix()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, storeError(err, "user")
	}
	s.logger.Info("Admin granted", "admin_id", caller, "user_id", userID)
	return user, nil
}

func (s *UserService) update(ctx context.Context, userID int64, update UserUpdate) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user")
	}

	if update.Name != "" {
		if user.Name, err = requireText("name", update.Name, maxNameLength); err != nil {
			return nil, err
		}
	}
	if update.Surname != "" {
		if user.Surname, err = requireText("surname", update.Surname, maxNameLength); err != nil {
			return nil, err
		}
	}
	if update.Mail != "" {
		if user.Mail, err = validMail(update.Mail); err != nil {
			return nil, err
		}
	}
	user.UpdatedAt = time.Now().Unix()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.Conflict(apperr.ReasonEmailTaken, "email already registered")
		}
		return nil, storeError(err, "user")
	}
	return user, nil
}
