package genie

import (
	"context"
	"fmt"
	"time"

	"github.com/yuanchaoma-db/genie-space/internal/logger"
)

// Poller waits for a submitted message to reach a terminal status. The
// interval never backs off; backoff applies only to transport failures
// inside GetMessage.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
}

func NewPoller(interval, timeout time.Duration) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	return &Poller{Interval: interval, Timeout: timeout}
}

// WaitForCompletion polls GetMessage until a terminal status appears.
// Service-reported ERROR/FAILED is still a returned message; the caller
// distinguishes success from failure by status. The wall clock runs from
// the first poll; exceeding it returns ErrPollTimeout. Cancellation of ctx
// is observed between polls and inside GetMessage.
func (p *Poller) WaitForCompletion(ctx context.Context, client *Client, conversationID, messageID string) (*Message, error) {
	deadline := time.Now().Add(p.Timeout)

	for {
		msg, err := client.GetMessage(ctx, conversationID, messageID)
		if err != nil {
			return nil, err
		}

		if msg.Terminal() {
			logger.Debug("message reached terminal status", "message", messageID, "status", msg.Status)
			return msg, nil
		}

		select {
		case <-time.After(p.Interval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w after %s", ErrPollTimeout, p.Timeout)
		}
	}
}
