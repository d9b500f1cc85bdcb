package httpapi

import (
	"net/http"

	"github.com/natalia11920/pairpay/internal/middleware"
	"github.com/natalia11920/pairpay/internal/service"
)

func (a *api) createExpense(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	expense, err := a.svc.Expenses.Create(r.Context(), caller(r), billID, service.ExpenseInput{
		Name:         req.Name,
		Price:        int64(req.Price),
		Currency:     req.Currency,
		PayerID:      req.Payer,
		Participants: req.Participants,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, expenseResponse{Expense: toExpense(expense)})
}

func (a *api) expenseDetails(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	details, err := a.svc.Expenses.Get(r.Context(), caller(r), billID, expenseID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, expenseDetailsResponse{Expense: toExpenseDetails(details)})
}

func (a *api) deleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID, err := pathID(r, "expenseId")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if err := a.svc.Expenses.Delete(r.Context(), caller(r), expenseID); err != nil {
		middleware.WriteError(w, err)
		return
	}
	ok(w, "expense deleted")
}

func (a *api) debtBalances(w http.ResponseWriter, r *http.Request) {
	sheet, err := a.svc.Debts.Balances(r.Context(), caller(r))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBalances(sheet))
}
