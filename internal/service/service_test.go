package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/natalia11920/pairpay/internal/auth"
	"github.com/natalia11920/pairpay/internal/cache"
	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/money"
	"github.com/natalia11920/pairpay/internal/storage/sqlite"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

const testSecret = "test-secret-key-with-at-least-32-characters"

var mailSeq atomic.Int64

// fixture wires every service over a fresh SQLite database.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *sqlite.SQLiteStore
	jwt   *auth.JWTManager
	svc   *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithLogger(t, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newFixtureWithLogger(t *testing.T, logger *slog.Logger) *fixture {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")
	t.Cleanup(func() { store.Close() })

	jwt := auth.NewJWTManager(testSecret, 15*time.Minute, time.Hour)
	svc := New(Deps{
		Store:         store,
		Cache:         cache.NewMemory(time.Minute),
		Authenticator: auth.NewPasswordAuthenticator(store, bcrypt.MinCost),
		JWT:           jwt,
		IsAdminMail:   func(mail string) bool { return mail == "root@example.com" },
		Logger:        logger,
	})

	return &fixture{t: t, ctx: context.Background(), store: store, jwt: jwt, svc: svc}
}

// user registers a user with fake profile data.
func (f *fixture) user() *models.User {
	f.t.Helper()
	return f.register(fmt.Sprintf("u%d.%s", mailSeq.Add(1), gofakeit.Email()))
}

func (f *fixture) register(mail string) *models.User {
	f.t.Helper()
	tokens, err := f.svc.Auth.Register(f.ctx, RegisterInput{
		Name:     gofakeit.FirstName(),
		Surname:  gofakeit.LastName(),
		Mail:     mail,
		Password: "password123",
	})
	require.NoError(f.t, err)
	return tokens.User
}

func (f *fixture) befriend(a, b *models.User) {
	f.t.Helper()
	req, err := f.svc.Friends.SendRequest(f.ctx, a.ID, b.Mail)
	require.NoError(f.t, err)
	require.NoError(f.t, f.svc.Friends.Accept(f.ctx, b.ID, req.ID))
}

// bill creates a bill owned by creator with members who accepted invitations.
func (f *fixture) bill(creator *models.User, members ...*models.User) *models.Bill {
	f.t.Helper()
	bill, err := f.svc.Bills.Create(f.ctx, creator.ID, gofakeit.Word(), "Travel")
	require.NoError(f.t, err)
	if len(members) == 0 {
		return bill
	}

	mails := make([]string, len(members))
	for i, m := range members {
		f.befriend(creator, m)
		mails[i] = m.Mail
	}
	invitations, err := f.svc.Invitations.InviteUsers(f.ctx, creator.ID, bill.ID, mails)
	require.NoError(f.t, err)
	for _, inv := range invitations {
		require.NoError(f.t, f.svc.Invitations.Accept(f.ctx, inv.InviteeID, inv.ID))
	}
	return bill
}

func (f *fixture) expense(bill *models.Bill, caller, payer *models.User, price int64, currency string, participants ...*models.User) *models.Expense {
	f.t.Helper()
	ids := make([]int64, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	e, err := f.svc.Expenses.Create(f.ctx, caller.ID, bill.ID, ExpenseInput{
		Name:         gofakeit.Word(),
		Price:        price,
		Currency:     currency,
		PayerID:      payer.ID,
		Participants: ids,
	})
	require.NoError(f.t, err)
	return e
}

func (f *fixture) debt(user, friend *models.User, currency string) models.DebtInfo {
	f.t.Helper()
	sheet, err := f.svc.Debts.Balances(f.ctx, user.ID)
	require.NoError(f.t, err)
	fb, ok := sheet.Friend(friend.ID)
	if !ok {
		return models.DebtInfo{Currency: currency}
	}
	for _, d := range fb.Debts {
		if d.Currency == currency {
			return d
		}
	}
	return models.DebtInfo{Currency: currency}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperr.CodeOf(err), "error: %v", err)
}

func assertConflict(t *testing.T, err error, reason string) {
	t.Helper()
	assertCode(t, err, apperr.CodeConflict)
	assert.Equal(t, reason, apperr.ReasonOf(err))
}

func TestTripDinnerScenario(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user(), f.user(), f.user()

	trip := f.bill(a, b, c)
	assert.Equal(t, "Travel", trip.Label)

	dinner := f.expense(trip, a, a, 30000, "usd", a, b, c)
	assert.Equal(t, "USD", dinner.Currency)
	for _, s := range dinner.Shares {
		assert.Equal(t, int64(10000), s.AmountOwed)
	}

	owedByB := f.debt(b, a, "USD")
	assert.Equal(t, int64(10000), owedByB.OwedToFriend)
	assert.Equal(t, int64(-10000), owedByB.NetDebt)

	owedToA := f.debt(a, b, "USD")
	assert.Equal(t, int64(10000), owedToA.OwedToUser)
	assert.Equal(t, int64(10000), owedToA.NetDebt)

	sheet, err := f.svc.Debts.Balances(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"USD": 20000}, sheet.Totals)
}

func TestRemainderGoesToLowestIDs(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user(), f.user(), f.user()
	bill := f.bill(a, b, c)

	e := f.expense(bill, b, b, 100, "PLN", c, a, b)

	got := map[int64]int64{}
	var sum int64
	for _, s := range e.Shares {
		got[s.UserID] = s.AmountOwed
		sum += s.AmountOwed
	}
	assert.Equal(t, int64(100), sum)
	assert.Equal(t, map[int64]int64{a.ID: 34, b.ID: 33, c.ID: 33}, got)
}

func TestBalancesAreZeroSum(t *testing.T) {
	f := newFixture(t)
	users := []*models.User{f.user(), f.user(), f.user(), f.user()}
	bill := f.bill(users[0], users[1:]...)
	currencies := []string{"USD", "EUR"}

	for i := 0; i < 25; i++ {
		payer := users[gofakeit.Number(0, len(users)-1)]
		n := gofakeit.Number(1, len(users))
		participants := users[:n]
		f.expense(bill, users[0], payer, int64(gofakeit.Number(1, 100000)), currencies[i%2], participants...)
	}

	for _, x := range users {
		for _, y := range users {
			if x.ID == y.ID {
				continue
			}
			for _, cur := range currencies {
				assert.Equal(t, f.debt(x, y, cur).NetDebt, -f.debt(y, x, cur).NetDebt,
					"users %d/%d %s", x.ID, y.ID, cur)
			}
		}
	}
}

func TestExpenseValidation(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(), f.user()
	outsider := f.user()
	bill := f.bill(a, b)

	tests := []struct {
		name string
		in   ExpenseInput
	}{
		{"zero price", ExpenseInput{Name: "x", Price: 0, Currency: "USD", PayerID: a.ID, Participants: []int64{a.ID}}},
		{"price over limit", ExpenseInput{Name: "x", Price: int64(money.MaxAmount) + 1, Currency: "USD", PayerID: a.ID, Participants: []int64{a.ID}}},
		{"negative price", ExpenseInput{Name: "x", Price: -5, Currency: "USD", PayerID: a.ID, Participants: []int64{a.ID}}},
		{"no participants", ExpenseInput{Name: "x", Price: 100, Currency: "USD", PayerID: a.ID}},
		{"duplicate participants", ExpenseInput{Name: "x", Price: 100, Currency: "USD", PayerID: a.ID, Participants: []int64{a.ID, a.ID}}},
		{"bad currency", ExpenseInput{Name: "x", Price: 100, Currency: "dollars", PayerID: a.ID, Participants: []int64{a.ID}}},
		{"missing name", ExpenseInput{Name: " <b></b> ", Price: 100, Currency: "USD", PayerID: a.ID, Participants: []int64{a.ID}}},
		{"payer outside bill", ExpenseInput{Name: "x", Price: 100, Currency: "USD", PayerID: outsider.ID, Participants: []int64{a.ID}}},
		{"participant outside bill", ExpenseInput{Name: "x", Price: 100, Currency: "USD", PayerID: a.ID, Participants: []int64{outsider.ID}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Expenses.Create(f.ctx, b.ID, bill.ID, tt.in)
			assertCode(t, err, apperr.CodeValidation)
		})
	}

	_, err := f.svc.Expenses.Create(f.ctx, outsider.ID, bill.ID, ExpenseInput{
		Name: "x", Price: 100, Currency: "USD", PayerID: a.ID, Participants: []int64{a.ID},
	})
	assertCode(t, err, apperr.CodeNotFound)
}

func TestExpenseDetailsAndDelete(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(), f.user()
	outsider := f.user()
	bill := f.bill(a, b)
	other := f.bill(a)

	e := f.expense(bill, b, b, 500, "EUR", a, b)
	assert.Equal(t, int64(-250), f.debt(a, b, "EUR").NetDebt)

	details, err := f.svc.Expenses.Get(f.ctx, a.ID, bill.ID, e.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, details.Payer.ID)
	require.Len(t, details.Shares, 2)
	assert.Equal(t, int64(250), details.Shares[0].AmountOwed)

	_, err = f.svc.Expenses.Get(f.ctx, a.ID, other.ID, e.ID)
	assertCode(t, err, apperr.CodeNotFound)
	_, err = f.svc.Expenses.Get(f.ctx, outsider.ID, bill.ID, e.ID)
	assertCode(t, err, apperr.CodeNotFound)

	assertCode(t, f.svc.Expenses.Delete(f.ctx, b.ID, e.ID), apperr.CodeForbidden)
	assertCode(t, f.svc.Expenses.Delete(f.ctx, outsider.ID, e.ID), apperr.CodeNotFound)

	require.NoError(t, f.svc.Expenses.Delete(f.ctx, a.ID, e.ID))
	assert.Zero(t, f.debt(a, b, "EUR").NetDebt, "cached balance must be invalidated")
	assertCode(t, f.svc.Expenses.Delete(f.ctx, a.ID, e.ID), apperr.CodeNotFound)
}

func TestBillAccessControl(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(), f.user()
	outsider := f.user()
	bill := f.bill(a, b)

	_, err := f.svc.Bills.Details(f.ctx, outsider.ID, bill.ID)
	assertCode(t, err, apperr.CodeNotFound)
	_, err = f.svc.Bills.Details(f.ctx, outsider.ID, 99999)
	assertCode(t, err, apperr.CodeNotFound)
	_, err = f.svc.Bills.Participants(f.ctx, outsider.ID, bill.ID)
	assertCode(t, err, apperr.CodeNotFound)

	_, err = f.svc.Bills.Update(f.ctx, b.ID, bill.ID, "Renamed", "")
	assertCode(t, err, apperr.CodeForbidden)
	assertCode(t, f.svc.Bills.Delete(f.ctx, b.ID, bill.ID), apperr.CodeForbidden)
	assertCode(t, f.svc.Bills.RemoveParticipant(f.ctx, b.ID, bill.ID, b.ID), apperr.CodeForbidden)
	_, err = f.svc.Invitations.InviteUsers(f.ctx, b.ID, bill.ID, []string{outsider.Mail})
	assertCode(t, err, apperr.CodeForbidden)

	details, err := f.svc.Bills.Details(f.ctx, b.ID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, details.Creator.ID)
	require.Len(t, details.Members, 1)
	assert.Equal(t, b.ID, details.Members[0].ID)

	updated, err := f.svc.Bills.Update(f.ctx, a.ID, bill.ID, "  <i>Renamed</i> ", "Food")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "Food", updated.Label)

	participants, err := f.svc.Bills.Participants(f.ctx, b.ID, bill.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, a.ID, participants[0].ID, "creator first")
}

func TestBillDetailsSettlements(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user(), f.user(), f.user()
	bill := f.bill(a, b, c)
	f.expense(bill, a, a, 900, "USD", a, b, c)
	f.expense(bill, a, b, 400, "EUR", a, b)

	details, err := f.svc.Bills.Details(f.ctx, a.ID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"USD": 900, "EUR": 400}, details.Totals)
	assert.Len(t, details.Expenses, 2)

	var usd int64
	for _, edge := range details.Settlements {
		if edge.Currency == "USD" {
			assert.Equal(t, a.ID, edge.To)
			usd += edge.Amount
		}
	}
	assert.Equal(t, int64(600), usd)
}

func TestDeleteBillRemovesEverything(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(), f.user()
	bill := f.bill(a, b)
	f.expense(bill, a, a, 1000, "USD", a, b)
	assert.Equal(t, int64(500), f.debt(a, b, "USD").NetDebt)

	page := models.Page{Number: 1, PerPage: 10}
	created, err := f.svc.Bills.ListCreated(f.ctx, a.ID, page)
	require.NoError(t, err)
	assert.Equal(t, 1, created.TotalItems)
	assert.Equal(t, RoleCreator, created.Role)
	assert.Equal(t, map[string]int64{"USD": 1000}, created.Bills[0].Totals)

	require.NoError(t, f.svc.Bills.Delete(f.ctx, a.ID, bill.ID))

	created, err = f.svc.Bills.ListCreated(f.ctx, a.ID, page)
	require.NoError(t, err)
	assert.Zero(t, created.TotalItems)
	assigned, err := f.svc.Bills.ListAssigned(f.ctx, b.ID, page)
	require.NoError(t, err)
	assert.Zero(t, assigned.TotalItems)

	expenses, err := f.store.ListExpensesInvolving(f.ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, expenses)
	assert.Zero(t, f.debt(b, a, "USD").NetDebt)

	_, err = f.svc.Bills.Details(f.ctx, a.ID, bill.ID)
	assertCode(t, err, apperr.CodeNotFound)
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, perPage int
		want          models.Page
		wantErr       bool
	}{
		{0, 0, models.Page{Number: 1, PerPage: DefaultPerPage}, false},
		{3, 4, models.Page{Number: 3, PerPage: 4}, false},
		{-1, 4, models.Page{}, true},
		{1, MaxPerPage + 1, models.Page{}, true},
	}
	for _, tt := range tests {
		got, err := NormalizePage(tt.page, tt.perPage)
		if tt.wantErr {
			assertCode(t, err, apperr.CodeValidation)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestInviteUsers(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user(), f.user(), f.user()
	stranger := f.user()
	f.befriend(a, b)
	f.befriend(c, a)
	bill := f.bill(a)

	_, err := f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{c.Mail, stranger.Mail})
	assertCode(t, err, apperr.CodeValidation)
	_, err = f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{"nobody@example.com"})
	assertCode(t, err, apperr.CodeValidation)
	_, err = f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, nil)
	assertCode(t, err, apperr.CodeValidation)

	pending, err := f.svc.Invitations.Pending(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, pending, "rejected batch must not invite anyone")

	available, err := f.svc.Bills.AvailableFriends(f.ctx, a.ID, bill.ID)
	require.NoError(t, err)
	assert.Len(t, available, 2)

	invs, err := f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{b.Mail, b.Mail})
	require.NoError(t, err)
	require.Len(t, invs, 1)

	_, err = f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{c.Mail, b.Mail})
	assertConflict(t, err, apperr.ReasonDuplicateInvitation)

	available, err = f.svc.Bills.AvailableFriends(f.ctx, a.ID, bill.ID)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, c.ID, available[0].ID)

	require.NoError(t, f.svc.Invitations.Accept(f.ctx, b.ID, invs[0].ID))
	_, err = f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{b.Mail})
	assertConflict(t, err, apperr.ReasonAlreadyMember)
	_, err = f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{a.Mail})
	assertConflict(t, err, apperr.ReasonAlreadyMember)
}

func TestInvitationLifecycle(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user(), f.user(), f.user()
	f.befriend(a, b)
	f.befriend(a, c)
	bill := f.bill(a)

	invs, err := f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{b.Mail, c.Mail})
	require.NoError(t, err)
	require.Len(t, invs, 2)

	pending, err := f.svc.Invitations.Pending(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, bill.Name, pending[0].BillName)
	assert.Equal(t, a.Mail, pending[0].InviterMail)

	assertCode(t, f.svc.Invitations.Accept(f.ctx, c.ID, invs[0].ID), apperr.CodeNotFound)

	require.NoError(t, f.svc.Invitations.Accept(f.ctx, b.ID, invs[0].ID))
	assertConflict(t, f.svc.Invitations.Accept(f.ctx, b.ID, invs[0].ID), apperr.ReasonAlreadyTerminal)
	assertConflict(t, f.svc.Invitations.Decline(f.ctx, b.ID, invs[0].ID), apperr.ReasonAlreadyTerminal)

	require.NoError(t, f.svc.Invitations.Decline(f.ctx, c.ID, invs[1].ID))
	pending, err = f.svc.Invitations.Pending(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err := f.store.GetBill(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID}, got.Members, "one membership, declined invitee not added")

	// A declined invitee can be invited again.
	_, err = f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{c.Mail})
	assert.NoError(t, err)
}

func TestConcurrentInvitationAccept(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(), f.user()
	f.befriend(a, b)
	bill := f.bill(a)

	invs, err := f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{b.Mail})
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.svc.Invitations.Accept(f.ctx, b.ID, invs[0].ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assertConflict(t, err, apperr.ReasonAlreadyTerminal)
	}
	assert.Equal(t, 1, succeeded)

	participants, err := f.svc.Bills.Participants(f.ctx, a.ID, bill.ID)
	require.NoError(t, err)
	assert.Len(t, participants, 2)
}

func TestRemoveParticipantKeepsHistory(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(), f.user()
	bill := f.bill(a, b)
	f.expense(bill, a, a, 800, "USD", a, b)

	assertCode(t, f.svc.Bills.RemoveParticipant(f.ctx, a.ID, bill.ID, a.ID), apperr.CodeValidation)
	require.NoError(t, f.svc.Bills.RemoveParticipant(f.ctx, a.ID, bill.ID, b.ID))
	assertCode(t, f.svc.Bills.RemoveParticipant(f.ctx, a.ID, bill.ID, b.ID), apperr.CodeNotFound)

	_, err := f.svc.Bills.Details(f.ctx, b.ID, bill.ID)
	assertCode(t, err, apperr.CodeNotFound)
	assert.Equal(t, int64(400), f.debt(a, b, "USD").NetDebt)

	details, err := f.svc.Bills.Details(f.ctx, a.ID, bill.ID)
	require.NoError(t, err)
	assert.Contains(t, details.People, b.ID, "removed member still resolves in expenses")
}

func TestFriendRequests(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user(), f.user(), f.user()

	_, err := f.svc.Friends.SendRequest(f.ctx, a.ID, a.Mail)
	assertCode(t, err, apperr.CodeValidation)
	_, err = f.svc.Friends.SendRequest(f.ctx, a.ID, "nobody@example.com")
	assertCode(t, err, apperr.CodeNotFound)

	req, err := f.svc.Friends.SendRequest(f.ctx, a.ID, b.Mail)
	require.NoError(t, err)
	_, err = f.svc.Friends.SendRequest(f.ctx, b.ID, a.Mail)
	assertConflict(t, err, apperr.ReasonDuplicateInvitation)

	pending, err := f.svc.Friends.PendingRequests(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].Requester.ID)

	assertCode(t, f.svc.Friends.Accept(f.ctx, c.ID, req.ID), apperr.CodeNotFound)
	assertCode(t, f.svc.Friends.Accept(f.ctx, a.ID, req.ID), apperr.CodeNotFound)
	require.NoError(t, f.svc.Friends.Accept(f.ctx, b.ID, req.ID))
	assertConflict(t, f.svc.Friends.Accept(f.ctx, b.ID, req.ID), apperr.ReasonAlreadyTerminal)

	_, err = f.svc.Friends.SendRequest(f.ctx, b.ID, a.Mail)
	assertConflict(t, err, apperr.ReasonAlreadyFriends)

	friends, err := f.svc.Friends.Friends(f.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1, "accepting twice must not duplicate the friendship")
	assert.Equal(t, b.ID, friends[0].User.ID)
	assert.Empty(t, friends[0].Debts)

	declined, err := f.svc.Friends.SendRequest(f.ctx, c.ID, a.Mail)
	require.NoError(t, err)
	require.NoError(t, f.svc.Friends.Decline(f.ctx, a.ID, declined.ID))
	friends, err = f.svc.Friends.Friends(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, friends, 1)
}

func TestFriendsCarryDebts(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(), f.user()
	bill := f.bill(a, b)
	f.expense(bill, b, b, 1000, "PLN", a, b)

	friends, err := f.svc.Friends.Friends(f.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	require.Len(t, friends[0].Debts, 1)
	assert.Equal(t, models.DebtInfo{Currency: "PLN", OwedToFriend: 500, NetDebt: -500}, friends[0].Debts[0])
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	a, b, c := f.user(), f.user(), f.user()
	f.befriend(a, b)
	bill := f.bill(a)

	_, err := f.svc.Invitations.InviteUsers(f.ctx, a.ID, bill.ID, []string{b.Mail})
	require.NoError(t, err)
	_, err = f.svc.Friends.SendRequest(f.ctx, c.ID, b.Mail)
	require.NoError(t, err)

	feed, err := f.svc.Notifications.List(f.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	kinds := map[models.NotificationKind]bool{}
	for _, n := range feed {
		kinds[n.Kind] = true
		switch n.Kind {
		case models.KindFriendInvitation:
			require.NotNil(t, n.FriendRequest)
			assert.Nil(t, n.BillInvitation)
			assert.Equal(t, c.ID, n.FriendRequest.Requester.ID)
		case models.KindBillInvitation:
			require.NotNil(t, n.BillInvitation)
			assert.Nil(t, n.FriendRequest)
			assert.Equal(t, bill.ID, n.BillInvitation.BillID)
		}
	}
	assert.Len(t, kinds, 2)
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)

	admin := f.register("root@example.com")
	assert.True(t, admin.Admin)

	tokens, err := f.svc.Auth.Register(f.ctx, RegisterInput{Name: "Bob", Surname: "Builder", Mail: "Bob@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.False(t, tokens.User.Admin)
	assert.Equal(t, "bob@example.com", tokens.User.Mail)

	_, err = f.svc.Auth.Register(f.ctx, RegisterInput{Name: "Bob", Surname: "Again", Mail: "bob@example.com", Password: "password123"})
	assertConflict(t, err, apperr.ReasonEmailTaken)
	_, err = f.svc.Auth.Register(f.ctx, RegisterInput{Name: "Bob", Surname: "Short", Mail: "short@example.com", Password: "pw"})
	assertCode(t, err, apperr.CodeValidation)
	_, err = f.svc.Auth.Register(f.ctx, RegisterInput{Name: "Bob", Surname: "Mail", Mail: "not-an-address", Password: "password123"})
	assertCode(t, err, apperr.CodeValidation)

	_, err = f.svc.Auth.Login(f.ctx, "bob@example.com", "wrong-password")
	assertCode(t, err, apperr.CodeUnauthorized)

	login, err := f.svc.Auth.Login(f.ctx, "bob@example.com", "password123")
	require.NoError(t, err)

	access, err := f.svc.Auth.Refresh(f.ctx, login.RefreshToken)
	require.NoError(t, err)
	claims, err := f.jwt.Validate(access, auth.TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, tokens.User.ID, claims.UserID)

	_, err = f.svc.Auth.Refresh(f.ctx, access)
	assertCode(t, err, apperr.CodeUnauthorized)

	require.NoError(t, f.svc.Auth.Logout(f.ctx, tokens.User.ID))
	_, err = f.svc.Auth.Refresh(f.ctx, login.RefreshToken)
	assertCode(t, err, apperr.CodeUnauthorized)
}

func TestUserAdministration(t *testing.T) {
	f := newFixture(t)
	admin := f.register("root@example.com")
	a, b := f.user(), f.user()

	_, err := f.svc.Users.Search(f.ctx, a.ID, b.Mail)
	assertCode(t, err, apperr.CodeForbidden)
	found, err := f.svc.Users.Search(f.ctx, admin.ID, b.Mail)
	require.NoError(t, err)
	assert.Equal(t, b.ID, found.ID)
	_, err = f.svc.Users.Search(f.ctx, admin.ID, "nobody@example.com")
	assertCode(t, err, apperr.CodeNotFound)

	updated, err := f.svc.Users.AdminUpdate(f.ctx, admin.ID, b.ID, UserUpdate{Surname: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Surname)
	assert.Equal(t, b.Name, updated.Name)

	_, err = f.svc.Users.UpdateSelf(f.ctx, a.ID, UserUpdate{Mail: b.Mail})
	assertConflict(t, err, apperr.ReasonEmailTaken)

	_, err = f.svc.Users.MakeAdmin(f.ctx, a.ID, a.ID)
	assertCode(t, err, apperr.CodeForbidden)
	promoted, err := f.svc.Users.MakeAdmin(f.ctx, admin.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, promoted.Admin)
	_, err = f.svc.Users.Search(f.ctx, a.ID, b.Mail)
	assert.NoError(t, err)

	mails, err := f.svc.Users.ListMails(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, mails, 2)
	assert.NotContains(t, mails, a.Mail)

	me, err := f.svc.Users.Me(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Mail, me.Mail)
}

func TestPreviewSplit(t *testing.T) {
	shares, err := PreviewSplit(100, []int64{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []models.Share{{UserID: 1, AmountOwed: 34}, {UserID: 2, AmountOwed: 33}, {UserID: 3, AmountOwed: 33}}, shares)

	_, err = PreviewSplit(100, nil)
	assertCode(t, err, apperr.CodeValidation)

	_, err = PreviewSplit(math.MaxInt64, []int64{1, 2})
	assertCode(t, err, apperr.CodeValidation)
}

func TestLargeExpensesKeepTotalsExact(t *testing.T) {
	f := newFixture(t)
	a, b := f.user(), f.user()
	bill := f.bill(a, b)

	limit := int64(money.MaxAmount)
	f.expense(bill, a, a, limit, "USD", a, b)
	f.expense(bill, b, b, limit, "USD", a, b)

	_, err := f.svc.Expenses.Create(f.ctx, a.ID, bill.ID, ExpenseInput{
		Name: "too much", Price: math.MaxInt64/2 + 1, Currency: "USD", PayerID: a.ID, Participants: []int64{a.ID, b.ID},
	})
	assertCode(t, err, apperr.CodeValidation)

	details, err := f.svc.Bills.Details(f.ctx, a.ID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"USD": 2 * limit}, details.Totals)

	created, err := f.svc.Bills.ListCreated(f.ctx, a.ID, models.Page{Number: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, created.Bills, 1)
	assert.Equal(t, map[string]int64{"USD": 2 * limit}, created.Bills[0].Totals)

	assigned, err := f.svc.Bills.ListAssigned(f.ctx, b.ID, models.Page{Number: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, assigned.Bills, 1)
	assert.Equal(t, map[string]int64{"USD": 2 * limit}, assigned.Bills[0].Totals)
}

func TestServicesLogThroughSharedLogger(t *testing.T) {
	var global bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&global, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	f := newFixtureWithLogger(t, slog.New(slog.NewTextHandler(&buf, nil)))
	a, b := f.user(), f.user()
	bill := f.bill(a, b)
	e := f.expense(bill, a, a, 100, "USD", a, b)
	require.NoError(t, f.svc.Expenses.Delete(f.ctx, a.ID, e.ID))
	require.NoError(t, f.svc.Bills.Delete(f.ctx, a.ID, bill.ID))

	for _, msg := range []string{
		"User registered successfully",
		"Friend request sent",
		"Friend request resolved",
		"Bill created",
		"Users invited to bill",
		"Bill invitation resolved",
		"Expense created",
		"Expense deleted",
		"Bill deleted",
	} {
		assert.Contains(t, buf.String(), msg)
	}
	assert.Empty(t, global.String(), "services must not log through the default logger")
}
