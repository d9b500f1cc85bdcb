package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/natalia11920/pairpay/internal/models"
)

var _ BalanceCache = (*Redis)(nil)

const keyPrefix = "pairpay:balance:"

// Redis is a BalanceCache shared by every server instance.
// Sheets are stored under a key that includes the version, so a stale
// writer only fills a key no reader will ask for again.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and checks the connection.
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func versionKey(userID int64) string {
	return fmt.Sprintf("%sver:%d", keyPrefix, userID)
}

func sheetKey(userID, version int64) string {
	return fmt.Sprintf("%s%d:%d", keyPrefix, userID, version)
}

func (r *Redis) Version(ctx context.Context, userID int64) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance version: %w", err)
	}
	return v, nil
}

func (r *Redis) Get(ctx context.Context, userID, version int64) (*models.BalanceSheet, bool, error) {
	data, err := r.client.Get(ctx, sheetKey(userID, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read balance sheet: %w", err)
	}

	var sheet models.BalanceSheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, false, fmt.Errorf("failed to decode balance sheet: %w", err)
	}
	return &sheet, true, nil
}

func (r *Redis) Set(ctx context.Context, userID, version int64, sheet *models.BalanceSheet) error {
	data, err := json.Marshal(sheet)
	if err != nil {
		return fmt.Errorf("failed to encode balance sheet: %w", err)
	}
	if err := r.client.Set(ctx, sheetKey(userID, version), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write balance sheet: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for _, id := range userIDs {
		pipe.Incr(ctx, versionKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to bump balance versions: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
