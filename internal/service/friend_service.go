package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// FriendStore is the persistence FriendService needs.
type FriendStore interface {
	storage.UserStore
	storage.FriendStore
}

// FriendService drives the friend request state machine and lists friends
// with their balances.
type FriendService struct {
	store  FriendStore
	debts  *DebtService
	logger *slog.Logger
}

// NewFriendService creates a new FriendService.
func NewFriendService(store FriendStore, debts *DebtService, logger *slog.Logger) *FriendService {
	return &FriendService{store: store, debts: debts, logger: logger}
}

// Friend is a friend's profile with the caller's balance toward them,
// one DebtInfo per currency.
type Friend struct {
	User  *models.User
	Debts []models.DebtInfo
}

// SendRequest sends a friend request from caller to the user owning mail.
func (s *FriendService) SendRequest(ctx context.Context, caller int64, mailAddr string) (*models.FriendRequest, error) {
	address := models.NormalizeMail(mailAddr)
	if address == "" {
		return nil, apperr.Validation("mail is required")
	}

	target, err := s.store.GetUserByMail(ctx, address)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if target.ID == caller {
		return nil, apperr.Validation("cannot send a friend request to yourself")
	}

	friends, err := s.store.AreFriends(ctx, caller, target.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if friends {
		return nil, apperr.Conflict(apperr.ReasonAlreadyFriends, "already friends")
	}

	pending, err := s.store.HasPendingFriendRequest(ctx, caller, target.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if pending {
		return nil, apperr.Conflict(apperr.ReasonDuplicateInvitation, "a friend request is already pending")
	}

	req := &models.FriendRequest{RequesterID: caller, TargetID: target.ID}
	if err := s.store.CreateFriendRequest(ctx, req); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.Conflict(apperr.ReasonDuplicateInvitation, "a friend request is already pending")
		}
		return nil, apperr.Internal(err)
	}

	s.logger.Info("Friend request sent", "request_id", req.ID, "requester_id", caller, "target_id", target.ID)
	return req, nil
}

// PendingRequests lists the requests waiting for the caller's answer.
func (s *FriendService) PendingRequests(ctx context.Context, caller int64) ([]models.PendingFriendRequest, error) {
	requests, err := s.store.ListPendingFriendRequests(ctx, caller)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return requests, nil
}

// Accept accepts a friend request addressed to the caller.
func (s *FriendService) Accept(ctx context.Context, caller, requestID int64) error {
	return s.resolve(ctx, caller, requestID, models.StatusAccepted)
}

// Decline declines a friend request addressed to the caller.
func (s *FriendService) Decline(ctx context.Context, caller, requestID int64) error {
	return s.resolve(ctx, caller, requestID, models.StatusDeclined)
}

func (s *FriendService) resolve(ctx context.Context, caller, requestID int64, status models.Status) error {
	req, err := s.store.GetFriendRequest(ctx, requestID)
	if err != nil {
		return storeError(err, "friend request")
	}
	if req.TargetID != caller {
		return apperr.NotFound("friend request not found")
	}
	if req.Status.Terminal() {
		return apperr.Conflict(apperr.ReasonAlreadyTerminal, "friend request was already resolved")
	}

	if err := s.store.ResolveFriendRequest(ctx, requestID, status); err != nil {
		return storeError(err, "friend request")
	}

	s.logger.Info("Friend request resolved", "request_id", requestID, "status", status, "user_id", caller)
	return nil
}

// Friends lists the caller's friends with per-currency balances.
func (s *FriendService) Friends(ctx context.Context, caller int64) ([]Friend, error) {
	ids, err := s.store.ListFriendIDs(ctx, caller)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	sheet, err := s.debts.Balances(ctx, caller)
	if err != nil {
		return nil, err
	}

	friends := make([]Friend, 0, len(ids))
	for _, id := range ids {
		user, ok := users[id]
		if !ok {
			continue
		}
		f := Friend{User: user, Debts: []models.DebtInfo{}}
		if balance, ok := sheet.Friend(id); ok {
			f.Debts = balance.Debts
		}
		friends = append(friends, f)
	}
	return friends, nil
}
