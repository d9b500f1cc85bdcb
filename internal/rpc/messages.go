package rpc

import "github.com/natalia11920/pairpay/internal/money"

type GetBalancesRequest struct{}

type GetBalancesResponse struct {
	UserID  int64                   `json:"user_id"`
	Totals  map[string]money.Amount `json:"totals"`
	Friends []FriendBalance         `json:"friends"`
}

type FriendBalance struct {
	FriendID int64  `json:"friend_id"`
	Debts    []Debt `json:"debts"`
}

// Debt is the caller's position toward one friend in one currency.
// NetDebt is positive when the friend owes the caller.
type Debt struct {
	Currency     string       `json:"currency"`
	NetDebt      money.Amount `json:"net_debt"`
	OwedToFriend money.Amount `json:"owed_to_friend"`
	OwedToUser   money.Amount `json:"owed_to_user"`
}

type PreviewSplitRequest struct {
	Price          money.Amount `json:"price"`
	ParticipantIDs []int64      `json:"participant_ids"`
}

type PreviewSplitResponse struct {
	Shares []Share `json:"shares"`
}

type Share struct {
	UserID     int64        `json:"user_id"`
	AmountOwed money.Amount `json:"amount_owed"`
}
