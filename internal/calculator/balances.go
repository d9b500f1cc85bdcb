package calculator

import (
	"slices"
	"sort"

	"github.com/natalia11920/pairpay/internal/models"
)

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	Currency string
	PayerID  int64
	Shares   []models.Share
}

// FromExpense converts a stored expense.
func FromExpense(e *models.Expense) ExpenseForBalance {
	return ExpenseForBalance{
		Currency: e.Currency,
		PayerID:  e.PayerID,
		Shares:   e.Shares,
	}
}

// Aggregate folds expenses into userID's balance sheet.
//
// Algorithm:
//   - user paid: every other share holder's share is owed to the user
//   - user holds a share of someone else's payment: the share is owed to the payer
//   - shares a payer holds of their own payment create no debt
//
// Currencies are never mixed; every friend gets one DebtInfo per currency.
func Aggregate(userID int64, expenses []ExpenseForBalance) *models.BalanceSheet {
	// debts[friend][currency]
	debts := make(map[int64]map[string]*models.DebtInfo)
	entry := func(friend int64, currency string) *models.DebtInfo {
		byCurrency, ok := debts[friend]
		if !ok {
			byCurrency = make(map[string]*models.DebtInfo)
			debts[friend] = byCurrency
		}
		d, ok := byCurrency[currency]
		if !ok {
			d = &models.DebtInfo{Currency: currency}
			byCurrency[currency] = d
		}
		return d
	}

	for _, e := range expenses {
		if e.PayerID == userID {
			for _, s := range e.Shares {
				if s.UserID == userID {
					continue
				}
				entry(s.UserID, e.Currency).OwedToUser += s.AmountOwed
			}
			continue
		}
		for _, s := range e.Shares {
			if s.UserID == userID {
				entry(e.PayerID, e.Currency).OwedToFriend += s.AmountOwed
			}
		}
	}

	sheet := &models.BalanceSheet{
		UserID: userID,
		Totals: make(map[string]int64),
	}

	friendIDs := make([]int64, 0, len(debts))
	for id := range debts {
		friendIDs = append(friendIDs, id)
	}
	slices.Sort(friendIDs)

	for _, id := range friendIDs {
		byCurrency := debts[id]
		currencies := make([]string, 0, len(byCurrency))
		for c := range byCurrency {
			currencies = append(currencies, c)
		}
		sort.Strings(currencies)

		fb := models.FriendBalance{FriendID: id}
		for _, c := range currencies {
			d := byCurrency[c]
			d.NetDebt = d.OwedToUser - d.OwedToFriend
			sheet.Totals[c] += d.NetDebt
			fb.Debts = append(fb.Debts, *d)
		}
		sheet.Friends = append(sheet.Friends, fb)
	}

	return sheet
}

// MemberBalance is one participant's position inside a bill for one currency.
type MemberBalance struct {
	UserID     int64
	Currency   string
	TotalPaid  int64
	TotalOwed  int64
	NetBalance int64 // Positive = is owed money, Negative = owes money
}

// DebtEdge is a suggested payment that settles part of a bill.
type DebtEdge struct {
	From     int64 // who owes
	To       int64 // who is owed
	Currency string
	Amount   int64
}

// SettleUp computes per-member balances inside one bill and a small set of
// payments that clears them, currency by currency.
//
// Algorithm:
//   - For each expense: payer contributed +price, each share holder owes their share
//   - net_balance = total_paid - total_owed
//   - Payments: greedy matching of the largest debtor with the largest creditor
func SettleUp(expenses []ExpenseForBalance) ([]MemberBalance, []DebtEdge) {
	type key struct {
		user     int64
		currency string
	}
	balances := make(map[key]*MemberBalance)
	get := func(user int64, currency string) *MemberBalance {
		k := key{user, currency}
		b, ok := balances[k]
		if !ok {
			b = &MemberBalance{UserID: user, Currency: currency}
			balances[k] = b
		}
		return b
	}

	for _, e := range expenses {
		var price int64
		for _, s := range e.Shares {
			price += s.AmountOwed
			get(s.UserID, e.Currency).TotalOwed += s.AmountOwed
		}
		get(e.PayerID, e.Currency).TotalPaid += price
	}

	var members []MemberBalance
	for _, b := range balances {
		b.NetBalance = b.TotalPaid - b.TotalOwed
		members = append(members, *b)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Currency != members[j].Currency {
			return members[i].Currency < members[j].Currency
		}
		return members[i].UserID < members[j].UserID
	})

	byCurrency := make(map[string][]MemberBalance)
	var currencies []string
	for _, m := range members {
		if _, ok := byCurrency[m.Currency]; !ok {
			currencies = append(currencies, m.Currency)
		}
		byCurrency[m.Currency] = append(byCurrency[m.Currency], m)
	}

	var edges []DebtEdge
	for _, c := range currencies {
		edges = append(edges, settleCurrency(c, byCurrency[c])...)
	}
	return members, edges
}

func settleCurrency(currency string, members []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, m := range members {
		if m.NetBalance > 0 {
			creditors = append(creditors, m)
		} else if m.NetBalance < 0 {
			debtors = append(debtors, m)
		}
	}
	// Largest first; ties by user id keep the output stable.
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].NetBalance > creditors[j].NetBalance })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].NetBalance < debtors[j].NetBalance })

	var edges []DebtEdge
	i, j := 0, 0
	owes := make([]int64, len(debtors))
	owed := make([]int64, len(creditors))
	for k, d := range debtors {
		owes[k] = -d.NetBalance
	}
	for k, c := range creditors {
		owed[k] = c.NetBalance
	}

	for i < len(debtors) && j < len(creditors) {
		amount := min(owes[i], owed[j])
		if amount > 0 {
			edges = append(edges, DebtEdge{
				From:     debtors[i].UserID,
				To:       creditors[j].UserID,
				Currency: currency,
				Amount:   amount,
			})
		}
		owes[i] -= amount
		owed[j] -= amount
		if owes[i] == 0 {
			i++
		}
		if owed[j] == 0 {
			j++
		}
	}
	return edges
}
