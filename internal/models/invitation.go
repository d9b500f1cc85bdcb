package models

// BillInvitation offers membership of a Bill to Invitee.
type BillInvitation struct {
	ID         int64
	BillID     int64
	InviterID  int64
	InviteeID  int64
	Status     Status
	CreatedAt  int64
	ResolvedAt int64
}

// PendingBillInvitation is an incoming invitation joined with bill and inviter details.
type PendingBillInvitation struct {
	ID          int64
	BillID      int64
	BillName    string
	InviterMail string
	CreatedAt   int64
}
