package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"news_digest/internal/domain"
)

// RabbitMQ emits pipeline events so downstream consumers (archival, search
// indexing, analytics) can react without polling the database.
type RabbitMQ struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
	logger     *slog.Logger
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		cfg.RoutingKey,
		cfg.Exchange,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// Event is the envelope for every message on the digest exchange.
type Event struct {
	Type      string          `json:"type"` // "digest.created" or "email.sent"
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type DigestCreatedPayload struct {
	Digest domain.Digest `json:"digest"`
}

type EmailSentPayload struct {
	To       string `json:"to"`
	Articles int    `json:"articles"`
}

// PublishDigestCreated announces a freshly written digest.
func (r *RabbitMQ) PublishDigestCreated(ctx context.Context, digest domain.Digest) error {
	payload, err := json.Marshal(DigestCreatedPayload{Digest: digest})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := r.publish(ctx, "digest.created", payload); err != nil {
		return err
	}
	r.logger.Debug("published digest event", "digest", digest.ID)
	return nil
}

// PublishEmailSent announces one successful digest delivery.
func (r *RabbitMQ) PublishEmailSent(ctx context.Context, to string, articles int) error {
	payload, err := json.Marshal(EmailSentPayload{To: to, Articles: articles})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := r.publish(ctx, "email.sent", payload); err != nil {
		return err
	}
	r.logger.Debug("published email event", "to", to)
	return nil
}

func (r *RabbitMQ) publish(ctx context.Context, eventType string, payload json.RawMessage) error {
	body, err := json.Marshal(Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
