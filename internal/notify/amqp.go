// Package notify delivers budget alerts to external channels.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"gitlab.com/yelinaung/expense-tracker/internal/budget"
	"gitlab.com/yelinaung/expense-tracker/internal/logger"
)

// PublishTimeout bounds a single AMQP publish.
const PublishTimeout = 5 * time.Second

// publisher is the part of *amqp091.Channel used to send alerts.
type publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

var _ publisher = (*amqp091.Channel)(nil)

// AMQPPublisher publishes alerts as JSON to a direct exchange, routed to a
// durable queue of the same name as the routing key.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	pub      publisher
	exchange string
	queue    string
}

// DialAMQP connects to url and declares the exchange, queue and binding.
func DialAMQP(url, exchange, queue string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p := &AMQPPublisher{
		conn:     conn,
		channel:  channel,
		pub:      channel,
		exchange: exchange,
		queue:    queue,
	}

	if err := p.setup(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set up exchange and queue: %w", err)
	}

	return p, nil
}

func (p *AMQPPublisher) setup() error {
	if err := p.channel.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := p.channel.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := p.channel.QueueBind(p.queue, p.queue, p.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Notify publishes alert as a persistent JSON message.
func (p *AMQPPublisher) Notify(ctx context.Context, alert budget.Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	err = p.pub.PublishWithContext(ctx, p.exchange, p.queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    alert.At,
		Type:         "budget.alert",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	logger.Log.Debug().
		Str("user_hash", logger.HashUserID(alert.UserID)).
		Str("level", string(alert.Status.Level)).
		Str("exchange", p.exchange).
		Msg("Published budget alert")
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
