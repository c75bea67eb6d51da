package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/architeacher/svc-order-outbox/internal/config"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
	"github.com/architeacher/svc-order-outbox/pkg/queue"
)

const exchangeKind = "topic"

// Publisher sends outbox records to RabbitMQ. The record id travels as both
// message id and correlation id so consumers can deduplicate the at-least-once
// stream, and the full type tag rides in a header for schema dispatch.
type Publisher struct {
	queue          infrastructure.Queue
	circuitBreaker *gobreaker.CircuitBreaker
	logger         infrastructure.Logger
	config         config.BrokerConfig

	fallbackWarning sync.Once
}

func NewPublisher(cfg config.BrokerConfig, q infrastructure.Queue, logger infrastructure.Logger) *Publisher {
	cbSettings := gobreaker.Settings{
		Name:        "outbox-publisher",
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info().
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &Publisher{
		queue:          q,
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		logger:         logger,
		config:         cfg,
	}
}

// Setup declares the exchange and, when a destination queue is configured,
// binds it to receive every event type.
func (p *Publisher) Setup() error {
	if err := p.queue.DeclareExchange(p.config.ExchangeName, exchangeKind, p.config.Durable, p.config.AutoDelete); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if p.config.Destination == "" {
		return nil
	}

	if _, err := p.queue.DeclareQueue(p.config.Destination, p.config.Durable, p.config.AutoDelete); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := p.queue.BindQueue(p.config.Destination, "#", p.config.ExchangeName); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

// Publish sends one record. The returned error carries a transient or
// permanent classification; an open circuit breaker counts as transient
// because the broker may recover.
func (p *Publisher) Publish(ctx context.Context, msg ports.OutboxMessage) error {
	if p.config.Destination == "" {
		p.fallbackWarning.Do(func() {
			p.logger.Warn().Msg("no destination configured, routing by event short name")
		})
	}

	_, err := p.circuitBreaker.Execute(func() (any, error) {
		return nil, p.queue.Publish(ctx, p.config.ExchangeName, msg.TypeTag.String(), queue.Message{
			ID:          msg.ID.String(),
			Subject:     msg.TypeTag.ShortName(),
			TypeTag:     msg.TypeTag.String(),
			ContentType: "application/json",
			Body:        msg.Payload,
		})
	})
	if err != nil {
		return classify(err)
	}

	return nil
}

var _ ports.Publisher = (*Publisher)(nil)
