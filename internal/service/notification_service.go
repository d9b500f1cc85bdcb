package service

import (
	"context"
	"sort"

	"github.com/natalia11920/pairpay/internal/models"
)

// NotificationService merges pending friend requests and bill invitations
// into one feed for polling clients.
type NotificationService struct {
	friends     *FriendService
	invitations *InvitationService
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(friends *FriendService, invitations *InvitationService) *NotificationService {
	return &NotificationService{friends: friends, invitations: invitations}
}

// List returns the caller's pending items, oldest first.
func (s *NotificationService) List(ctx context.Context, caller int64) ([]models.Notification, error) {
	requests, err := s.friends.PendingRequests(ctx, caller)
	if err != nil {
		return nil, err
	}
	invitations, err := s.invitations.Pending(ctx, caller)
	if err != nil {
		return nil, err
	}

	feed := make([]models.Notification, 0, len(requests)+len(invitations))
	for i := range requests {
		feed = append(feed, models.Notification{
			Kind:          models.KindFriendInvitation,
			FriendRequest: &requests[i],
			CreatedAt:     requests[i].CreatedAt,
		})
	}
	for i := range invitations {
		feed = append(feed, models.Notification{
			Kind:           models.KindBillInvitation,
			BillInvitation: &invitations[i],
			CreatedAt:      invitations[i].CreatedAt,
		})
	}
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].CreatedAt < feed[j].CreatedAt })
	return feed, nil
}
