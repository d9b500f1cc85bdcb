package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/natalia11920/pairpay/internal/middleware"
	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/service"
)

func (a *api) createBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	bill, err := a.svc.Bills.Create(r.Context(), caller(r), req.Name, req.Label)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, billResponse{Bill: toBill(bill)})
}

func (a *api) listCreatedBills(w http.ResponseWriter, r *http.Request) {
	a.listBills(w, r, a.svc.Bills.ListCreated)
}

func (a *api) listAssignedBills(w http.ResponseWriter, r *http.Request) {
	a.listBills(w, r, a.svc.Bills.ListAssigned)
}

type listFunc func(ctx context.Context, caller int64, page models.Page) (*service.BillPage, error)

func (a *api) listBills(w http.ResponseWriter, r *http.Request, list listFunc) {
	pageNum, err := queryInt(r, "page")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	perPage, err := queryInt(r, "perPage")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	page, err := service.NormalizePage(pageNum, perPage)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	result, err := list(r.Context(), caller(r), page)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBillPage(result))
}

func (a *api) billDetails(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	details, err := a.svc.Bills.Details(r.Context(), caller(r), billID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, billDetailsResponse{Bill: toBillDetails(details)})
}

func (a *api) updateBill(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var req billRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	bill, err := a.svc.Bills.Update(r.Context(), caller(r), billID, req.Name, req.Label)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, billResponse{Bill: toBill(bill)})
}

func (a *api) deleteBill(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := a.svc.Bills.Delete(r.Context(), caller(r), billID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	ok(w, "bill deleted")
}

func (a *api) inviteUsers(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var req inviteRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	invitations, err := a.svc.Invitations.InviteUsers(r.Context(), caller(r), billID, req.UserEmails)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	ids := make([]int64, len(invitations))
	for i, inv := range invitations {
		ids[i] = inv.ID
	}
	middleware.WriteJSON(w, http.StatusCreated, inviteResponse{
		Message:     fmt.Sprintf("%d invitation(s) sent", len(ids)),
		Invitations: ids,
	})
}

func (a *api) availableFriends(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	users, err := a.svc.Bills.AvailableFriends(r.Context(), caller(r), billID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, friendsResponse{Friends: toUsers(users)})
}

func (a *api) participants(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	users, err := a.svc.Bills.Participants(r.Context(), caller(r), billID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, participantsResponse{Participants: toUsers(users)})
}

func (a *api) removeParticipant(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	userID, err := pathID(r, "userId")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := a.svc.Bills.RemoveParticipant(r.Context(), caller(r), billID, userID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	ok(w, "participant removed")
}
