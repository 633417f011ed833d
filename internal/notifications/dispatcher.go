package notifications

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"jobboard/internal/middleware"
)

const mailTimeout = 30 * time.Second

// Dispatcher fans application events out to Redis and email. Failures are
// logged and never returned: notifications must not fail the write that caused them.
type Dispatcher struct {
	notifier *Notifier
	mailer   Mailer
	wg       sync.WaitGroup
}

// NewDispatcher accepts a nil notifier or mailer.
func NewDispatcher(notifier *Notifier, mailer Mailer) *Dispatcher {
	if mailer == nil {
		mailer = NoopMailer{}
	}
	return &Dispatcher{notifier: notifier, mailer: mailer}
}

// Notify publishes event to the account channel.
func (d *Dispatcher) Notify(ctx context.Context, accountID uint, event Event) {
	if d == nil {
		return
	}
	if err := d.notifier.PublishAccount(ctx, accountID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			"account_id", accountID, "type", event.Type, "error", err)
	}
}

// EmailStatusChange mails the student about a new status in the background.
func (d *Dispatcher) EmailStatusChange(to string, event Event) {
	if d == nil || to == "" {
		return
	}
	subject := fmt.Sprintf("Your application for %s is now %s", event.OfferTitle, event.Status)
	body := fmt.Sprintf(
		"<p>Your application for <strong>%s</strong> has been updated.</p><p>New status: <strong>%s</strong></p>",
		html.EscapeString(event.OfferTitle), html.EscapeString(event.Status),
	)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := d.mailer.Send(ctx, to, subject, body); err != nil {
			middleware.Logger.Warn("failed to send status email",
				"application_id", event.ApplicationID, "error", err)
		}
	}()
}

// Wait blocks until background deliveries finish.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
