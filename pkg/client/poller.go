package client

import (
	"context"
	"errors"
	"time"
)

// DefaultPollInterval is the notification polling cadence.
const DefaultPollInterval = 100 * time.Second

// Poller fetches notifications on a fixed cadence.
type Poller struct {
	client   *Client
	interval time.Duration
	deliver  func([]Notification, error)
}

// NewPoller creates a poller calling deliver with every result.
// A non-positive interval means DefaultPollInterval.
func NewPoller(c *Client, interval time.Duration, deliver func([]Notification, error)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{client: c, interval: interval, deliver: deliver}
}

// Run polls immediately and then every interval until ctx is done or the
// session ends.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		notifications, err := p.client.Notifications(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.deliver(notifications, err)
		if errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNoSession) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
