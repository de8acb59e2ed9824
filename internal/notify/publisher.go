// Package notify publishes organizer notification events to RabbitMQ.
// Publishing is fire-and-forget from the caller's perspective: errors are
// logged and returned so callers can swallow them without rolling back the
// transaction that triggered the notification.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Queue names for submission outcome notifications.
const (
	QueueSubmissionApproved = "submission.approved"
	QueueSubmissionRejected = "submission.rejected"
)

// OrganizerEvent is the message consumed by the (external) mailer.
type OrganizerEvent struct {
	PendingID      int64  `json:"pending_id"`
	ShowID         int64  `json:"show_id,omitempty"`
	ShowTitle      string `json:"show_title,omitempty"`
	OrganizerName  string `json:"organizer_name"`
	OrganizerEmail string `json:"organizer_email"`
	Reason         string `json:"reason,omitempty"`
}

// Publisher delivers events to an AMQP broker. A zero URL disables it.
type Publisher struct {
	url string
}

// NewPublisher creates a Publisher for the given AMQP URL. An empty URL
// yields a disabled publisher whose Publish is a no-op.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Publish declares the durable queue and sends one persistent JSON message.
// A fresh connection per publish keeps the publisher stateless; approval
// volume is admin-paced so connection churn is negligible.
func (p *Publisher) Publish(ctx context.Context, queue string, event OrganizerEvent) error {
	if p == nil || p.url == "" {
		return nil
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: marshal event failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
