package httpapi

import (
	"time"

	"github.com/natalia11920/pairpay/internal/calculator"
	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/money"
	"github.com/natalia11920/pairpay/internal/service"
)

// Request bodies.

type loginRequest struct {
	Mail     string `json:"mail"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Mail     string `json:"mail"`
	Password string `json:"password"`
}

type userUpdateRequest struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Mail    string `json:"mail"`
}

type mailRequest struct {
	Mail string `json:"mail"`
}

type billRequest struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type inviteRequest struct {
	UserEmails []string `json:"user_emails"`
}

type expenseRequest struct {
	Name         string       `json:"name"`
	Price        money.Amount `json:"price"`
	Currency     string       `json:"currency"`
	Payer        int64        `json:"payer"`
	Participants []int64      `json:"participants"`
}

// Response bodies.

type messageResponse struct {
	Message string `json:"message"`
}

type userDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Mail    string `json:"mail"`
	Admin   bool   `json:"admin"`
}

type tokensResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         userDTO `json:"user"`
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type billDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	CreatorID int64  `json:"creator_id"`
	CreatedAt string `json:"created_at"`
}

type billResponse struct {
	Bill billDTO `json:"bill"`
}

type billSummaryDTO struct {
	ID        int64                   `json:"id"`
	Name      string                  `json:"name"`
	Label     string                  `json:"label"`
	TotalSum  money.Amount            `json:"total_sum"`
	Totals    map[string]money.Amount `json:"totals"`
	CreatedAt string                  `json:"created_at"`
	Status    string                  `json:"status"`
}

type billPageResponse struct {
	Bills       []billSummaryDTO `json:"bills"`
	TotalItems  int              `json:"total_items"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int              `json:"total_pages"`
}

type expenseSummaryDTO struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Currency  string       `json:"currency"`
	Price     money.Amount `json:"price"`
	Payer     *userDTO     `json:"payer"`
	CreatedAt string       `json:"created_at"`
}

type memberBalanceDTO struct {
	UserID     int64        `json:"user_id"`
	Currency   string       `json:"currency"`
	TotalPaid  money.Amount `json:"total_paid"`
	TotalOwed  money.Amount `json:"total_owed"`
	NetBalance money.Amount `json:"net_balance"`
}

type settlementDTO struct {
	From     int64        `json:"from"`
	To       int64        `json:"to"`
	Currency string       `json:"currency"`
	Amount   money.Amount `json:"amount"`
}

type billDetailsDTO struct {
	ID          int64                   `json:"id"`
	Name        string                  `json:"name"`
	Label       string                  `json:"label"`
	TotalSum    money.Amount            `json:"total_sum"`
	Totals      map[string]money.Amount `json:"totals"`
	CreatedAt   string                  `json:"created_at"`
	UserCreator *userDTO                `json:"user_creator"`
	Users       []userDTO               `json:"users"`
	Expenses    []expenseSummaryDTO     `json:"expenses"`
	Balances    []memberBalanceDTO      `json:"balances"`
	Settlements []settlementDTO         `json:"settlements"`
}

type billDetailsResponse struct {
	Bill billDetailsDTO `json:"bill"`
}

type inviteResponse struct {
	Message     string  `json:"message"`
	Invitations []int64 `json:"invitations"`
}

type friendsResponse struct {
	Friends []userDTO `json:"friends"`
}

type participantsResponse struct {
	Participants []userDTO `json:"participants"`
}

type shareDTO struct {
	UserID     int64        `json:"user_id"`
	AmountOwed money.Amount `json:"amount_owed"`
}

type expenseDTO struct {
	ID        int64        `json:"id"`
	BillID    int64        `json:"bill_id"`
	Name      string       `json:"name"`
	Price     money.Amount `json:"price"`
	Currency  string       `json:"currency"`
	PayerID   int64        `json:"payer_id"`
	Shares    []shareDTO   `json:"shares"`
	CreatedAt string       `json:"created_at"`
}

type expenseResponse struct {
	Expense expenseDTO `json:"expense"`
}

type participantShareDTO struct {
	AmountOwed money.Amount `json:"amount_owed"`
	User       *userDTO     `json:"user"`
}

type expenseDetailsDTO struct {
	ID           int64                 `json:"id"`
	BillID       int64                 `json:"bill_id"`
	Name         string                `json:"name"`
	Currency     string                `json:"currency"`
	Price        money.Amount          `json:"price"`
	Payer        *userDTO              `json:"payer"`
	Participants []participantShareDTO `json:"participants"`
	CreatedAt    string                `json:"created_at"`
}

type expenseDetailsResponse struct {
	Expense expenseDetailsDTO `json:"expense"`
}

type debtInfoDTO struct {
	Currency     string       `json:"currency,omitempty"`
	NetDebt      money.Amount `json:"net_debt"`
	OwedToFriend money.Amount `json:"owed_to_friend"`
	OwedToUser   money.Amount `json:"owed_to_user"`
}

type friendDTO struct {
	ID       int64         `json:"id"`
	Name     string        `json:"name"`
	Surname  string        `json:"surname"`
	Mail     string        `json:"mail"`
	DebtInfo debtInfoDTO   `json:"debt_info"`
	Debts    []debtInfoDTO `json:"debts"`
}

type friendListResponse struct {
	Friends []friendDTO `json:"friends"`
}

type friendRequestResponse struct {
	Message   string `json:"message"`
	RequestID int64  `json:"request_id"`
}

type pendingRequestDTO struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Mail      string `json:"mail"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	CreatedAt string `json:"created_at"`
}

type pendingRequestsResponse struct {
	PendingRequests []pendingRequestDTO `json:"pending_requests"`
}

type invitationDTO struct {
	InvitationID int64  `json:"invitation_id"`
	BillID       int64  `json:"bill_id"`
	BillName     string `json:"bill_name"`
	Email        string `json:"email"`
	CreatedAt    string `json:"created_at"`
}

type invitationsResponse struct {
	Invitations []invitationDTO `json:"invitations"`
}

type notificationDTO struct {
	Kind           models.NotificationKind `json:"kind"`
	CreatedAt      string                  `json:"created_at"`
	FriendRequest  *pendingRequestDTO      `json:"friend_request,omitempty"`
	BillInvitation *invitationDTO          `json:"bill_invitation,omitempty"`
}

type notificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

type balancesResponse struct {
	Balance  money.Amount            `json:"balance"`
	Currency string                  `json:"currency,omitempty"`
	Balances map[string]money.Amount `json:"balances"`
	Friends  []friendBalanceDTO      `json:"friends"`
}

type friendBalanceDTO struct {
	FriendID int64         `json:"friend_id"`
	Debts    []debtInfoDTO `json:"debts"`
}

// Conversions.

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func amounts(m map[string]int64) map[string]money.Amount {
	out := make(map[string]money.Amount, len(m))
	for currency, v := range m {
		out[currency] = money.Amount(v)
	}
	return out
}

// singleAmount returns the only value of m, or zero when m holds
// several currencies, which are never summed.
func singleAmount(m map[string]int64) (money.Amount, string) {
	if len(m) != 1 {
		return 0, ""
	}
	for currency, v := range m {
		return money.Amount(v), currency
	}
	return 0, ""
}

func toUser(u *models.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Surname: u.Surname, Mail: u.Mail, Admin: u.Admin}
}

func toUserPtr(u *models.User) *userDTO {
	if u == nil {
		return nil
	}
	dto := toUser(u)
	return &dto
}

func toUsers(users []*models.User) []userDTO {
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return out
}

func toBill(b *models.Bill) billDTO {
	return billDTO{ID: b.ID, Name: b.Name, Label: b.Label, CreatorID: b.CreatorID, CreatedAt: formatTime(b.CreatedAt)}
}

func toBillPage(p *service.BillPage) billPageResponse {
	resp := billPageResponse{
		Bills:       make([]billSummaryDTO, 0, len(p.Bills)),
		TotalItems:  p.TotalItems,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
	}
	for _, b := range p.Bills {
		total, _ := singleAmount(b.Totals)
		resp.Bills = append(resp.Bills, billSummaryDTO{
			ID:        b.ID,
			Name:      b.Name,
			Label:     b.Label,
			TotalSum:  total,
			Totals:    amounts(b.Totals),
			CreatedAt: formatTime(b.CreatedAt),
			Status:    p.Role,
		})
	}
	return resp
}

func toBillDetails(d *service.BillDetails) billDetailsDTO {
	total, _ := singleAmount(d.Totals)
	dto := billDetailsDTO{
		ID:          d.Bill.ID,
		Name:        d.Bill.Name,
		Label:       d.Bill.Label,
		TotalSum:    total,
		Totals:      amounts(d.Totals),
		CreatedAt:   formatTime(d.Bill.CreatedAt),
		UserCreator: toUserPtr(d.Creator),
		Users:       toUsers(d.Members),
		Expenses:    make([]expenseSummaryDTO, 0, len(d.Expenses)),
		Balances:    make([]memberBalanceDTO, 0, len(d.Balances)),
		Settlements: make([]settlementDTO, 0, len(d.Settlements)),
	}
	for _, e := range d.Expenses {
		dto.Expenses = append(dto.Expenses, expenseSummaryDTO{
			ID:        e.ID,
			Name:      e.Name,
			Currency:  e.Currency,
			Price:     money.Amount(e.Price),
			Payer:     toUserPtr(d.People[e.PayerID]),
			CreatedAt: formatTime(e.CreatedAt),
		})
	}
	for _, b := range d.Balances {
		dto.Balances = append(dto.Balances, toMemberBalance(b))
	}
	for _, s := range d.Settlements {
		dto.Settlements = append(dto.Settlements, settlementDTO{
			From: s.From, To: s.To, Currency: s.Currency, Amount: money.Amount(s.Amount),
		})
	}
	return dto
}

func toMemberBalance(b calculator.MemberBalance) memberBalanceDTO {
	return memberBalanceDTO{
		UserID:     b.UserID,
		Currency:   b.Currency,
		TotalPaid:  money.Amount(b.TotalPaid),
		TotalOwed:  money.Amount(b.TotalOwed),
		NetBalance: money.Amount(b.NetBalance),
	}
}

func toExpense(e *models.Expense) expenseDTO {
	dto := expenseDTO{
		ID:        e.ID,
		BillID:    e.BillID,
		Name:      e.Name,
		Price:     money.Amount(e.Price),
		Currency:  e.Currency,
		PayerID:   e.PayerID,
		Shares:    make([]shareDTO, 0, len(e.Shares)),
		CreatedAt: formatTime(e.CreatedAt),
	}
	for _, s := range e.Shares {
		dto.Shares = append(dto.Shares, shareDTO{UserID: s.UserID, AmountOwed: money.Amount(s.AmountOwed)})
	}
	return dto
}

func toExpenseDetails(d *service.ExpenseDetails) expenseDetailsDTO {
	dto := expenseDetailsDTO{
		ID:           d.Expense.ID,
		BillID:       d.Expense.BillID,
		Name:         d.Expense.Name,
		Currency:     d.Expense.Currency,
		Price:        money.Amount(d.Expense.Price),
		Payer:        toUserPtr(d.Payer),
		Participants: make([]participantShareDTO, 0, len(d.Shares)),
		CreatedAt:    formatTime(d.Expense.CreatedAt),
	}
	for _, s := range d.Shares {
		dto.Participants = append(dto.Participants, participantShareDTO{
			AmountOwed: money.Amount(s.AmountOwed),
			User:       toUserPtr(s.User),
		})
	}
	return dto
}

func toDebtInfo(d models.DebtInfo) debtInfoDTO {
	return debtInfoDTO{
		Currency:     d.Currency,
		NetDebt:      money.Amount(d.NetDebt),
		OwedToFriend: money.Amount(d.OwedToFriend),
		OwedToUser:   money.Amount(d.OwedToUser),
	}
}

func toDebts(debts []models.DebtInfo) []debtInfoDTO {
	out := make([]debtInfoDTO, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebtInfo(d))
	}
	return out
}

func toFriend(f service.Friend) friendDTO {
	dto := friendDTO{
		ID:      f.User.ID,
		Name:    f.User.Name,
		Surname: f.User.Surname,
		Mail:    f.User.Mail,
		Debts:   toDebts(f.Debts),
	}
	if len(f.Debts) == 1 {
		dto.DebtInfo = toDebtInfo(f.Debts[0])
	}
	return dto
}

func toPendingRequest(r models.PendingFriendRequest) pendingRequestDTO {
	return pendingRequestDTO{
		ID:        r.ID,
		UserID:    r.Requester.ID,
		Mail:      r.Requester.Mail,
		Name:      r.Requester.Name,
		Surname:   r.Requester.Surname,
		CreatedAt: formatTime(r.CreatedAt),
	}
}

func toInvitation(i models.PendingBillInvitation) invitationDTO {
	return invitationDTO{
		InvitationID: i.ID,
		BillID:       i.BillID,
		BillName:     i.BillName,
		Email:        i.InviterMail,
		CreatedAt:    formatTime(i.CreatedAt),
	}
}

func toNotification(n models.Notification) notificationDTO {
	dto := notificationDTO{Kind: n.Kind, CreatedAt: formatTime(n.CreatedAt)}
	if n.FriendRequest != nil {
		r := toPendingRequest(*n.FriendRequest)
		dto.FriendRequest = &r
	}
	if n.BillInvitation != nil {
		i := toInvitation(*n.BillInvitation)
		dto.BillInvitation = &i
	}
	return dto
}

func toBalances(sheet *models.BalanceSheet) balancesResponse {
	balance, currency := singleAmount(sheet.Totals)
	resp := balancesResponse{
		Balance:  balance,
		Currency: currency,
		Balances: amounts(sheet.Totals),
		Friends:  make([]friendBalanceDTO, 0, len(sheet.Friends)),
	}
	for _, f := range sheet.Friends {
		resp.Friends = append(resp.Friends, friendBalanceDTO{FriendID: f.FriendID, Debts: toDebts(f.Debts)})
	}
	return resp
}
