package models

// NotificationKind discriminates the records returned by the notifications feed.
type NotificationKind string

const (
	KindFriendInvitation NotificationKind = "friend_invitation"
	KindBillInvitation   NotificationKind = "bill_invitation"
)

// Notification is a pending item the user has to act on.
// Exactly one of FriendRequest and BillInvitation is set, matching Kind.
type Notification struct {
	Kind           NotificationKind
	FriendRequest  *PendingFriendRequest
	BillInvitation *PendingBillInvitation
	CreatedAt      int64
}
