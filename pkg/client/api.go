package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserEmails lists the addresses of every other user.
func (c *Client) UserEmails(ctx context.Context) ([]string, error) {
	var mails []string
	if err := c.do(ctx, http.MethodGet, "/api/user/get_users_emails", nil, &mails); err != nil {
		return nil, err
	}
	return mails, nil
}

// SearchUser looks a user up by mail. Admin only.
func (c *Client) SearchUser(ctx context.Context, mail string) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/user/search", map[string]string{"mail": mail}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateBill creates a bill owned by the signed-in user.
func (c *Client) CreateBill(ctx context.Context, name, label string) (*Bill, error) {
	var resp struct {
		Bill Bill `json:"bill"`
	}
	body := map[string]string{"name": name, "label": label}
	if err := c.do(ctx, http.MethodPost, "/api/create-bill", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Bill, nil
}

func pageQuery(page, perPage int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("perPage", strconv.Itoa(perPage))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// CreatedBills lists bills the user created. Zero values use server defaults.
func (c *Client) CreatedBills(ctx context.Context, page, perPage int) (*BillPage, error) {
	var p BillPage
	if err := c.do(ctx, http.MethodGet, "/api/bills/created"+pageQuery(page, perPage), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AssignedBills lists bills the user was invited to.
func (c *Client) AssignedBills(ctx context.Context, page, perPage int) (*BillPage, error) {
	var p BillPage
	if err := c.do(ctx, http.MethodGet, "/api/bills/assigned"+pageQuery(page, perPage), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Bill returns the details of a bill.
func (c *Client) Bill(ctx context.Context, billID int64) (*BillDetails, error) {
	var resp struct {
		Bill BillDetails `json:"bill"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/bills/%d", billID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Bill, nil
}

// UpdateBill renames a bill.
func (c *Client) UpdateBill(ctx context.Context, billID int64, name, label string) error {
	body := map[string]string{"name": name, "label": label}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/bills/%d", billID), body, nil)
}

// DeleteBill deletes a bill with everything in it.
func (c *Client) DeleteBill(ctx context.Context, billID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/bills/%d", billID), nil, nil)
}

// InviteUsers invites friends to a bill by mail.
func (c *Client) InviteUsers(ctx context.Context, billID int64, mails []string) error {
	body := map[string][]string{"user_emails": mails}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/bills/%d/invite-users", billID), body, nil)
}

// AvailableFriends lists friends who can still be invited to a bill.
func (c *Client) AvailableFriends(ctx context.Context, billID int64) ([]User, error) {
	var resp struct {
		Friends []User `json:"friends"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/bills/%d/available-friends", billID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Friends, nil
}

// Participants lists the creator and members of a bill.
func (c *Client) Participants(ctx context.Context, billID int64) ([]User, error) {
	var resp struct {
		Participants []User `json:"participants"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/bills/%d/participants", billID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Participants, nil
}

// RemoveParticipant removes a member from a bill.
func (c *Client) RemoveParticipant(ctx context.Context, billID, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/bills/%d/participant/%d", billID, userID), nil, nil)
}

// CreateExpense adds an expense to a bill.
func (c *Client) CreateExpense(ctx context.Context, billID int64, e NewExpense) (*Expense, error) {
	var resp struct {
		Expense Expense `json:"expense"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/bill/%d/expense/create", billID), e, &resp); err != nil {
		return nil, err
	}
	return &resp.Expense, nil
}

// Expense returns an expense with its participants.
func (c *Client) Expense(ctx context.Context, billID, expenseID int64) (*ExpenseDetails, error) {
	var resp struct {
		Expense ExpenseDetails `json:"expense"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/bill/%d/expenses/%d", billID, expenseID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Expense, nil
}

// DeleteExpense removes an expense.
func (c *Client) DeleteExpense(ctx context.Context, expenseID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/bill/expense/%d", expenseID), nil, nil)
}

// Friends lists friends with balances.
func (c *Client) Friends(ctx context.Context) ([]Friend, error) {
	var resp struct {
		Friends []Friend `json:"friends"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/friends", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Friends, nil
}

// SendFriendRequest sends a friend request and returns its id.
func (c *Client) SendFriendRequest(ctx context.Context, mail string) (int64, error) {
	var resp struct {
		RequestID int64 `json:"request_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/send_request", map[string]string{"mail": mail}, &resp); err != nil {
		return 0, err
	}
	return resp.RequestID, nil
}

// PendingRequests lists incoming friend requests.
func (c *Client) PendingRequests(ctx context.Context) ([]FriendRequest, error) {
	var resp struct {
		PendingRequests []FriendRequest `json:"pending_requests"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pending_requests", nil, &resp); err != nil {
		return nil, err
	}
	return resp.PendingRequests, nil
}

// AcceptFriendRequest accepts an incoming friend request.
func (c *Client) AcceptFriendRequest(ctx context.Context, requestID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/accept_request/%d", requestID), nil, nil)
}

// DeclineFriendRequest declines an incoming friend request.
func (c *Client) DeclineFriendRequest(ctx context.Context, requestID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/decline_request/%d", requestID), nil, nil)
}

// Invitations lists pending bill invitations.
func (c *Client) Invitations(ctx context.Context) ([]BillInvitation, error) {
	var resp struct {
		Invitations []BillInvitation `json:"invitations"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/invitations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Invitations, nil
}

// AcceptInvitation joins the invitation's bill.
func (c *Client) AcceptInvitation(ctx context.Context, invitationID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/invitations/%d/accept", invitationID), nil, nil)
}

// DeclineInvitation declines a bill invitation.
func (c *Client) DeclineInvitation(ctx context.Context, invitationID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/invitations/%d/decline", invitationID), nil, nil)
}

// Notifications returns pending friend requests and bill invitations as
// tagged records, oldest first.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var resp struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

// Balances returns the user's debt balances.
func (c *Client) Balances(ctx context.Context) (*Balances, error) {
	var b Balances
	if err := c.do(ctx, http.MethodGet, "/api/debt/balances", nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
