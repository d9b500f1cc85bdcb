package httpapi

import (
	"context"
	"net/http"

	"github.com/natalia11920/pairpay/internal/middleware"
)

func (a *api) friends(w http.ResponseWriter, r *http.Request) {
	friends, err := a.svc.Friends.Friends(r.Context(), caller(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	resp := friendListResponse{Friends: make([]friendDTO, 0, len(friends))}
	for _, f := range friends {
		resp.Friends = append(resp.Friends, toFriend(f))
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

func (a *api) sendFriendRequest(w http.ResponseWriter, r *http.Request) {
	var req mailRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	fr, err := a.svc.Friends.SendRequest(r.Context(), caller(r), req.Mail)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, friendRequestResponse{Message: "friend request sent", RequestID: fr.ID})
}

func (a *api) pendingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := a.svc.Friends.PendingRequests(r.Context(), caller(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	resp := pendingRequestsResponse{PendingRequests: make([]pendingRequestDTO, 0, len(requests))}
	for _, req := range requests {
		resp.PendingRequests = append(resp.PendingRequests, toPendingRequest(req))
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

type resolveFunc func(ctx context.Context, caller, id int64) error

// resolve answers a friend request or bill invitation named by the id path variable.
func resolve(w http.ResponseWriter, r *http.Request, fn resolveFunc, message string) {
	id, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := fn(r.Context(), caller(r), id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	ok(w, message)
}

func (a *api) acceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	resolve(w, r, a.svc.Friends.Accept, "friend request accepted")
}

func (a *api) declineFriendRequest(w http.ResponseWriter, r *http.Request) {
	resolve(w, r, a.svc.Friends.Decline, "friend request declined")
}

func (a *api) billInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := a.svc.Invitations.Pending(r.Context(), caller(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	resp := invitationsResponse{Invitations: make([]invitationDTO, 0, len(invitations))}
	for _, inv := range invitations {
		resp.Invitations = append(resp.Invitations, toInvitation(inv))
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

func (a *api) acceptBillInvitation(w http.ResponseWriter, r *http.Request) {
	resolve(w, r, a.svc.Invitations.Accept, "invitation accepted")
}

func (a *api) declineBillInvitation(w http.ResponseWriter, r *http.Request) {
	resolve(w, r, a.svc.Invitations.Decline, "invitation declined")
}

func (a *api) notifications(w http.ResponseWriter, r *http.Request) {
	feed, err := a.svc.Notifications.List(r.Context(), caller(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	resp := notificationsResponse{Notifications: make([]notificationDTO, 0, len(feed))}
	for _, n := range feed {
		resp.Notifications = append(resp.Notifications, toNotification(n))
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
