package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// maxInvitesPerRequest bounds a single invite-users batch.
const maxInvitesPerRequest = 50

// InvitationService drives the bill invitation state machine.
type InvitationService struct {
	store  BillStore
	logger *slog.Logger
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(store BillStore, logger *slog.Logger) *InvitationService {
	return &InvitationService{store: store, logger: logger}
}

// InviteUsers invites the users owning mails to the bill. Creator only.
//
// Every address must belong to a friend of the creator who is neither a
// participant nor already invited. The batch is checked as a whole and
// stored in one transaction, so either all invitations exist or none do.
func (s *InvitationService) InviteUsers(ctx context.Context, caller, billID int64, mails []string) ([]*models.BillInvitation, error) {
	bill, err := loadBillForCreator(ctx, s.store, billID, caller)
	if err != nil {
		return nil, err
	}
	if len(mails) == 0 {
		return nil, apperr.Validation("user_emails must not be empty")
	}
	if len(mails) > maxInvitesPerRequest {
		return nil, apperr.Validation("at most %d users can be invited at once", maxInvitesPerRequest)
	}

	seen := make(map[int64]bool, len(mails))
	invitations := make([]*models.BillInvitation, 0, len(mails))
	for _, raw := range mails {
		address := models.NormalizeMail(raw)
		user, err := s.store.GetUserByMail(ctx, address)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.Validation("no user with email %s", address)
		}
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if seen[user.ID] {
			continue
		}
		seen[user.ID] = true

		if bill.IsParticipant(user.ID) {
			return nil, apperr.Conflict(apperr.ReasonAlreadyMember, fmt.Sprintf("%s is already a participant", address))
		}
		friends, err := s.store.AreFriends(ctx, caller, user.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if !friends {
			return nil, apperr.Validation("%s is not your friend", address)
		}
		pending, err := s.store.HasPendingBillInvitation(ctx, billID, user.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if pending {
			return nil, apperr.Conflict(apperr.ReasonDuplicateInvitation, fmt.Sprintf("%s is already invited", address))
		}

		invitations = append(invitations, &models.BillInvitation{
			BillID:    billID,
			InviterID: caller,
			InviteeID: user.ID,
		})
	}

	if err := s.store.CreateBillInvitations(ctx, invitations); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.Conflict(apperr.ReasonDuplicateInvitation, "a user is already invited")
		}
		return nil, apperr.Internal(err)
	}

	s.logger.Info("Users invited to bill", "bill_id", billID, "user_id", caller, "count", len(invitations))
	return invitations, nil
}

// Pending lists the bill invitations waiting for the caller's answer.
func (s *InvitationService) Pending(ctx context.Context, caller int64) ([]models.PendingBillInvitation, error) {
	invitations, err := s.store.ListPendingBillInvitations(ctx, caller)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return invitations, nil
}

// Accept joins the caller to the invitation's bill.
func (s *InvitationService) Accept(ctx context.Context, caller, invitationID int64) error {
	return s.resolve(ctx, caller, invitationID, models.StatusAccepted)
}

// Decline declines a bill invitation addressed to the caller.
func (s *InvitationService) Decline(ctx context.Context, caller, invitationID int64) error {
	return s.resolve(ctx, caller, invitationID, models.StatusDeclined)
}

func (s *InvitationService) resolve(ctx context.Context, caller, invitationID int64, status models.Status) error {
	inv, err := s.store.GetBillInvitation(ctx, invitationID)
	if err != nil {
		return storeError(err, "invitation")
	}
	if inv.InviteeID != caller {
		return apperr.NotFound("invitation not found")
	}
	if inv.Status.Terminal() {
		return apperr.Conflict(apperr.ReasonAlreadyTerminal, "invitation was already resolved")
	}

	if err := s.store.ResolveBillInvitation(ctx, invitationID, status); err != nil {
		return storeError(err, "invitation")
	}

	s.logger.Info("Bill invitation resolved", "invitation_id", invitationID, "bill_id", inv.BillID, "status", status, "user_id", caller)
	return nil
}
