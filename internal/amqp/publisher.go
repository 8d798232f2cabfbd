// Package amqp publishes orphaned-blob events so an out-of-band worker can
// retry deletions the API gave up on.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"fintrack/internal/logger"
	"fintrack/internal/storage"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp091.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends OrphanedBlob messages to a durable direct exchange.
type Publisher struct {
	conn         *amqp091.Connection
	channel      channel
	exchangeName string
	queueName    string
}

// NewPublisher dials the broker and declares the exchange, queue and binding.
func NewPublisher(url, exchangeName, queueName string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, exchangeName, queueName); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return &Publisher{
		conn:         conn,
		channel:      ch,
		exchangeName: exchangeName,
		queueName:    queueName,
	}, nil
}

func declare(ch *amqp091.Channel, exchangeName, queueName string) error {
	if err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key equals the queue name on the direct exchange.
	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish sends one persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, blob storage.OrphanedBlob) error {
	body, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		p.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Type:         "fintrack.blob.orphaned",
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// ReportOrphan publishes the event and logs, rather than returns, failures:
// the request that produced the orphan has already succeeded.
func (p *Publisher) ReportOrphan(ctx context.Context, blob storage.OrphanedBlob) {
	if err := p.Publish(context.WithoutCancel(ctx), blob); err != nil {
		logger.Get().Errorw("failed to publish orphaned blob",
			"error", err,
			"key", blob.Key,
			"transaction_id", blob.TransactionID,
		)
		return
	}
	logger.Get().Infow("published orphaned blob",
		"key", blob.Key,
		"exchange", p.exchangeName,
		"queue", p.queueName,
	)
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
