// Package cache stores derived balance sheets keyed by user and version.
//
// Every user has a version counter. Writers call Invalidate after a commit,
// which bumps the counter of every affected user. Readers take the version
// before computing and store the result under it, so an entry computed from
// older data is never returned once the version has moved on.
package cache

import (
	"context"

	"github.com/natalia11920/pairpay/internal/models"
)

// BalanceCache caches BalanceSheets. Cached sheets must be treated as read-only.
type BalanceCache interface {
	Version(ctx context.Context, userID int64) (int64, error)
	Get(ctx context.Context, userID, version int64) (*models.BalanceSheet, bool, error)
	Set(ctx context.Context, userID, version int64, sheet *models.BalanceSheet) error
	Invalidate(ctx context.Context, userIDs ...int64) error
	Close() error
}
