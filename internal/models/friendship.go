package models

// Status is the lifecycle state of a friend request or bill invitation.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// FriendRequest is a directed request from Requester to Target.
type FriendRequest struct {
	ID          int64
	RequesterID int64
	TargetID    int64
	Status      Status
	CreatedAt   int64
	ResolvedAt  int64
}

// PendingFriendRequest is an incoming request joined with the requester's profile.
type PendingFriendRequest struct {
	ID        int64
	Requester User
	CreatedAt int64
}

// FriendPair orders two user ids so that a friendship is stored once.
func FriendPair(a, b int64) (low, high int64) {
	if a < b {
		return a, b
	}
	return b, a
}
