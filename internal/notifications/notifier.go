// Package notifications delivers application lifecycle events to accounts
// over Redis pub/sub and, when SMTP is configured, by email.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"jobboard/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Event types published on account channels.
const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationStatus    = "application.status_changed"
	EventApplicationWithdrawn = "application.withdrawn"
)

// Event is the JSON payload published to an account channel.
type Event struct {
	Type          string    `json:"type"`
	ApplicationID uint      `json:"application_id"`
	JobOfferID    uint      `json:"job_offer_id"`
	OfferTitle    string    `json:"offer_title,omitempty"`
	Status        string    `json:"status,omitempty"`
	At            time.Time `json:"at"`
}

// AccountChannel returns the pub/sub channel of one account.
func AccountChannel(accountID uint) string {
	return fmt.Sprintf("notifications:account:%d", accountID)
}

// Notifier provides helpers to publish notifications into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishAccount sends an event to an account's channel. It is a no-op without Redis.
func (n *Notifier) PublishAccount(ctx context.Context, accountID uint, event Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, AccountChannel(accountID), payload).Err()
}

// StartAccountSubscriber subscribes to every account channel and calls
// onMessage for each payload until ctx is cancelled.
func (n *Notifier) StartAccountSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:account:*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in account subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
