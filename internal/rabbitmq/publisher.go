package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher publishes JSON events to a topic exchange.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
	Close() error
}

// NewPublisher builds a RabbitMQ publisher, or a noop publisher when AMQP is
// disabled or unreachable. Broker trouble never stops the service.
func NewPublisher(amqpURL, exchange string, log zerolog.Logger) Publisher {
	if amqpURL == "" {
		log.Info().Msg("rabbitmq disabled, using noop: empty amqp url")
		return noopPublisher{reason: "empty amqp url", log: log}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq disabled, using noop")
		return noopPublisher{reason: err.Error(), log: log}
	}

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq disabled, using noop")
		_ = conn.Close()
		return noopPublisher{reason: err.Error(), log: log}
	}

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		log.Warn().Err(err).Msg("rabbitmq disabled, using noop")
		_ = ch.Close()
		_ = conn.Close()
		return noopPublisher{reason: err.Error(), log: log}
	}

	log.Info().Str("exchange", exchange).Msg("rabbitmq connected")
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange, log: log}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	log      zerolog.Logger
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	amqpHeaders := amqp.Table{}
	for key, value := range headers {
		amqpHeaders[key] = value
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqpHeaders,
		Body:         body,
	})
	if err != nil {
		p.log.Error().Err(err).Str("routing_key", routingKey).Msg("rabbitmq publish failed")
	}
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct {
	reason string
	log    zerolog.Logger
}

func (p noopPublisher) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	p.log.Debug().Str("routing_key", routingKey).Str("request_id", headers["x-request-id"]).Msg("rabbitmq noop publish")
	return nil
}

func (noopPublisher) Close() error {
	return nil
}

// PublisherMode reports the publisher mode for logging.
func PublisherMode(p Publisher) string {
	switch p.(type) {
	case *amqpPublisher:
		return "amqp"
	case noopPublisher:
		return "noop"
	default:
		return "unknown"
	}
}

func PublisherNoopReason(p Publisher) string {
	if publisher, ok := p.(noopPublisher); ok {
		return publisher.reason
	}
	return ""
}
