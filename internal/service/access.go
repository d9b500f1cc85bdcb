package service

import (
	"context"

	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
	"github.com/natalia11920/pairpay/pkg/apperr"
)

// loadBillForParticipant returns the bill if caller is its creator or a member.
// A bill the caller cannot see is reported as missing.
func loadBillForParticipant(ctx context.Context, store storage.BillStore, billID, caller int64) (*models.Bill, error) {
	bill, err := store.GetBill(ctx, billID)
	if err != nil {
		return nil, storeError(err, "bill")
	}
	if !bill.IsParticipant(caller) {
		return nil, apperr.NotFound("bill not found")
	}
	return bill, nil
}

// loadBillForCreator is loadBillForParticipant restricted to the creator.
// Members get Forbidden.
func loadBillForCreator(ctx context.Context, store storage.BillStore, billID, caller int64) (*models.Bill, error) {
	bill, err := loadBillForParticipant(ctx, store, billID, caller)
	if err != nil {
		return nil, err
	}
	if bill.CreatorID != caller {
		return nil, apperr.Forbidden("only the bill creator can do this")
	}
	return bill, nil
}

// loadAdmin returns the caller if they are an admin.
// Admin status is read from the store so a revoked flag takes effect
// before the caller's token expires.
func loadAdmin(ctx context.Context, store storage.UserStore, caller int64) (*models.User, error) {
	user, err := store.GetUserByID(ctx, caller)
	if err != nil {
		return nil, storeError(err, "user")
	}
	if !user.Admin {
		return nil, apperr.Forbidden("admin privileges required")
	}
	return user, nil
}
