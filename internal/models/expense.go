package models

// Expense is a single payment inside a Bill.
type Expense struct {
	ID     int64
	BillID int64
	Name   string

	// Price is the amount paid, in minor units of Currency.
	Price    int64
	Currency string

	// PayerID is the participant who paid.
	PayerID int64

	// Shares split Price among the chosen participants.
	// The amounts always sum to Price.
	Shares []Share

	CreatedAt int64
}

// Share is one user's owed portion of an expense.
type Share struct {
	UserID     int64
	AmountOwed int64
}

// ShareOf returns the amount owed by userID, or false if the user has no share.
func (e *Expense) ShareOf(userID int64) (int64, bool) {
	for _, s := range e.Shares {
		if s.UserID == userID {
			return s.AmountOwed, true
		}
	}
	return 0, false
}

// UserIDs returns the payer and every share holder, without duplicates.
func (e *Expense) UserIDs() []int64 {
	seen := map[int64]bool{e.PayerID: true}
	ids := []int64{e.PayerID}
	for _, s := range e.Shares {
		if !seen[s.UserID] {
			seen[s.UserID] = true
			ids = append(ids, s.UserID)
		}
	}
	return ids
}
