package client

import "github.com/natalia11920/pairpay/internal/money"

// User is a public user profile.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Mail    string `json:"mail"`
	Admin   bool   `json:"admin"`
}

// Bill is the record returned when a bill is created or updated.
type Bill struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	CreatorID int64  `json:"creator_id"`
	CreatedAt string `json:"created_at"`
}

// BillSummary is one entry of a bill listing. Status is "creator" or "participant".
type BillSummary struct {
	ID        int64                   `json:"id"`
	Name      string                  `json:"name"`
	Label     string                  `json:"label"`
	TotalSum  money.Amount            `json:"total_sum"`
	Totals    map[string]money.Amount `json:"totals"`
	CreatedAt string                  `json:"created_at"`
	Status    string                  `json:"status"`
}

// BillPage is one page of a bill listing.
type BillPage struct {
	Bills       []BillSummary `json:"bills"`
	TotalItems  int           `json:"total_items"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
}

type ExpenseSummary struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Currency  string       `json:"currency"`
	Price     money.Amount `json:"price"`
	Payer     *User        `json:"payer"`
	CreatedAt string       `json:"created_at"`
}

type MemberBalance struct {
	UserID     int64        `json:"user_id"`
	Currency   string       `json:"currency"`
	TotalPaid  money.Amount `json:"total_paid"`
	TotalOwed  money.Amount `json:"total_owed"`
	NetBalance money.Amount `json:"net_balance"`
}

type Settlement struct {
	From     int64        `json:"from"`
	To       int64        `json:"to"`
	Currency string       `json:"currency"`
	Amount   money.Amount `json:"amount"`
}

// BillDetails is the full view of a bill.
type BillDetails struct {
	ID          int64                   `json:"id"`
	Name        string                  `json:"name"`
	Label       string                  `json:"label"`
	TotalSum    money.Amount            `json:"total_sum"`
	Totals      map[string]money.Amount `json:"totals"`
	CreatedAt   string                  `json:"created_at"`
	UserCreator *User                   `json:"user_creator"`
	Users       []User                  `json:"users"`
	Expenses    []ExpenseSummary        `json:"expenses"`
	Balances    []MemberBalance         `json:"balances"`
	Settlements []Settlement            `json:"settlements"`
}

// NewExpense is the input of CreateExpense. Price is in major units.
type NewExpense struct {
	Name         string       `json:"name"`
	Price        money.Amount `json:"price"`
	Currency     string       `json:"currency"`
	Payer        int64        `json:"payer"`
	Participants []int64      `json:"participants"`
}

type Share struct {
	UserID     int64        `json:"user_id"`
	AmountOwed money.Amount `json:"amount_owed"`
}

// Expense is a stored expense with its shares.
type Expense struct {
	ID        int64        `json:"id"`
	BillID    int64        `json:"bill_id"`
	Name      string       `json:"name"`
	Price     money.Amount `json:"price"`
	Currency  string       `json:"currency"`
	PayerID   int64        `json:"payer_id"`
	Shares    []Share      `json:"shares"`
	CreatedAt string       `json:"created_at"`
}

type ParticipantShare struct {
	AmountOwed money.Amount `json:"amount_owed"`
	User       *User        `json:"user"`
}

type ExpenseDetails struct {
	ID           int64              `json:"id"`
	BillID       int64              `json:"bill_id"`
	Name         string             `json:"name"`
	Currency     string             `json:"currency"`
	Price        money.Amount       `json:"price"`
	Payer        *User              `json:"payer"`
	Participants []ParticipantShare `json:"participants"`
	CreatedAt    string             `json:"created_at"`
}

// DebtInfo is a balance toward one friend. NetDebt is positive when the
// friend owes the caller.
type DebtInfo struct {
	Currency     string       `json:"currency,omitempty"`
	NetDebt      money.Amount `json:"net_debt"`
	OwedToFriend money.Amount `json:"owed_to_friend"`
	OwedToUser   money.Amount `json:"owed_to_user"`
}

// Friend carries DebtInfo only when a single currency is involved;
// Debts always lists every currency.
type Friend struct {
	ID       int64      `json:"id"`
	Name     string     `json:"name"`
	Surname  string     `json:"surname"`
	Mail     string     `json:"mail"`
	DebtInfo DebtInfo   `json:"debt_info"`
	Debts    []DebtInfo `json:"debts"`
}

type FriendRequest struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Mail      string `json:"mail"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	CreatedAt string `json:"created_at"`
}

// BillInvitation is a pending invitation; Email is the inviter's address.
type BillInvitation struct {
	InvitationID int64  `json:"invitation_id"`
	BillID       int64  `json:"bill_id"`
	BillName     string `json:"bill_name"`
	Email        string `json:"email"`
	CreatedAt    string `json:"created_at"`
}

// Notification kinds.
const (
	KindFriendInvitation = "friend_invitation"
	KindBillInvitation   = "bill_invitation"
)

// Notification is a tagged record: exactly one of FriendRequest and
// BillInvitation is set, matching Kind.
type Notification struct {
	Kind           string          `json:"kind"`
	CreatedAt      string          `json:"created_at"`
	FriendRequest  *FriendRequest  `json:"friend_request,omitempty"`
	BillInvitation *BillInvitation `json:"bill_invitation,omitempty"`
}

type FriendBalance struct {
	FriendID int64      `json:"friend_id"`
	Debts    []DebtInfo `json:"debts"`
}

// Balances is the caller's net position. Balance is set only when a single
// currency is involved.
type Balances struct {
	Balance  money.Amount            `json:"balance"`
	Currency string                  `json:"currency,omitempty"`
	Balances map[string]money.Amount `json:"balances"`
	Friends  []FriendBalance         `json:"friends"`
}
