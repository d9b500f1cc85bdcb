package httpapi

import (
	"net/http"

	"github.com/natalia11920/pairpay/internal/middleware"
	"github.com/natalia11920/pairpay/internal/service"
)

func (a *api) me(w http.ResponseWriter, r *http.Request) {
	user, err := a.svc.Users.Me(r.Context(), caller(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUser(user))
}

func (a *api) updateSelf(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	user, err := a.svc.Users.UpdateSelf(r.Context(), caller(r), service.UserUpdate(req))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUser(user))
}

// userMails answers with a bare JSON array of addresses.
func (a *api) userMails(w http.ResponseWriter, r *http.Request) {
	mails, err := a.svc.Users.ListMails(r.Context(), caller(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if mails == nil {
		mails = []string{}
	}
	middleware.WriteJSON(w, http.StatusOK, mails)
}

func (a *api) searchUser(w http.ResponseWriter, r *http.Request) {
	var req mailRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	user, err := a.svc.Users.Search(r.Context(), caller(r), req.Mail)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUser(user))
}

func (a *api) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var req userUpdateRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	user, err := a.svc.Users.AdminUpdate(r.Context(), caller(r), userID, service.UserUpdate(req))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUser(user))
}

func (a *api) makeAdmin(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	user, err := a.svc.Users.MakeAdmin(r.Context(), caller(r), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUser(user))
}
