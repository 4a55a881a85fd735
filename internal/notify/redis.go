// Package notify implements the outbound notification channels over Redis.
//
// Rendered mail goes to the CMD_SEND_EMAIL channel, consumed by the mailer
// service. Status-change events go to EVENT_APPLICATION_STATUS for the
// Gateway's SSE forward. Both are fire-and-forget: nothing here retries or
// reconciles a failed publish.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"hireboard/hiring-service/internal/hiring"
)

const (
	mailChannel  = "CMD_SEND_EMAIL"
	eventChannel = "EVENT_APPLICATION_STATUS"
)

// Dispatcher publishes mail commands and status events.
type Dispatcher struct {
	rdb *redis.Client
}

var (
	_ hiring.Notifier       = (*Dispatcher)(nil)
	_ hiring.EventPublisher = (*Dispatcher)(nil)
)

// NewDispatcher returns a Dispatcher over the given client.
func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// mailCommand is the wire shape consumed by the mailer service.
type mailCommand struct {
	Type    string `json:"type"`
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send publishes one rendered mail to the mailer channel.
func (d *Dispatcher) Send(ctx context.Context, from, to, subject, body string) error {
	payload, err := json.Marshal(mailCommand{
		Type:    mailChannel,
		From:    from,
		To:      to,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("marshal mail command: %w", err)
	}
	if err := d.rdb.Publish(ctx, mailChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", mailChannel, err)
	}
	return nil
}

// PublishStatusChanged publishes one committed status transition.
func (d *Dispatcher) PublishStatusChanged(ctx context.Context, ev hiring.StatusEvent) error {
	payload, err := json.Marshal(struct {
		Type string `json:"type"`
		hiring.StatusEvent
	}{Type: eventChannel, StatusEvent: ev})
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	if err := d.rdb.Publish(ctx, eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", eventChannel, err)
	}
	return nil
}
