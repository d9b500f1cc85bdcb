package models

// DebtInfo is the derived balance between a user and one friend in one currency.
// NetDebt is positive when the friend owes the user.
type DebtInfo struct {
	Currency     string
	OwedToFriend int64
	OwedToUser   int64
	NetDebt      int64
}

// FriendBalance groups a friend's DebtInfo entries, one per currency.
type FriendBalance struct {
	FriendID int64
	Debts    []DebtInfo
}

// BalanceSheet is the full derived balance view of one user.
type BalanceSheet struct {
	UserID int64

	// Friends is sorted by FriendID; each Debts slice by currency.
	Friends []FriendBalance

	// Totals maps currency to the user's net position across all friends.
	Totals map[string]int64
}

// Friend returns the balance entry for friendID, if any.
func (b *BalanceSheet) Friend(friendID int64) (FriendBalance, bool) {
	for _, f := range b.Friends {
		if f.FriendID == friendID {
			return f, true
		}
	}
	return FriendBalance{}, false
}

// NetToward returns the user's net position toward friendID in currency.
func (b *BalanceSheet) NetToward(friendID int64, currency string) int64 {
	f, ok := b.Friend(friendID)
	if !ok {
		return 0
	}
	for _, d := range f.Debts {
		if d.Currency == currency {
			return d.NetDebt
		}
	}
	return 0
}
