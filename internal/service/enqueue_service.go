package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/eventcodec"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
)

type (
	// EnqueueService runs business commands. Each command mutates its
	// aggregate and appends one outbox record per raised event inside the
	// same transaction, so an event can exist iff its mutation committed.
	EnqueueService interface {
		RegisterCustomer(ctx context.Context, email, fullName string) (*domain.Customer, error)
		PlaceOrder(ctx context.Context, customerID uuid.UUID, amountCents int64, currency string) (*domain.Order, error)
		PayOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	}

	enqueueService struct {
		uowFactory ports.UnitOfWorkFactory
		codec      *eventcodec.Registry
		clock      func() time.Time
		logger     infrastructure.Logger
		metrics    infrastructure.Metrics
	}
)

func NewEnqueueService(
	uowFactory ports.UnitOfWorkFactory,
	codec *eventcodec.Registry,
	clock func() time.Time,
	logger infrastructure.Logger,
	metrics infrastructure.Metrics,
) EnqueueService {
	if clock == nil {
		clock = time.Now
	}

	return enqueueService{
		uowFactory: uowFactory,
		codec:      codec,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s enqueueService) RegisterCustomer(ctx context.Context, email, fullName string) (*domain.Customer, error) {
	now := s.clock()

	customer, err := domain.RegisterCustomer(email, fullName, now)
	if err != nil {
		return nil, err
	}

	err = s.withUnitOfWork(ctx, func(uow ports.UnitOfWork) error {
		uow.Customers().Save(customer)

		return s.enqueueEvents(ctx, uow, customer.PullEvents(), now)
	})
	if err != nil {
		return nil, err
	}

	return customer, nil
}

func (s enqueueService) PlaceOrder(ctx context.Context, customerID uuid.UUID, amountCents int64, currency string) (*domain.Order, error) {
	now := s.clock()

	order, err := domain.PlaceOrder(customerID, amountCents, currency, now)
	if err != nil {
		return nil, err
	}

	err = s.withUnitOfWork(ctx, func(uow ports.UnitOfWork) error {
		uow.Orders().Save(order)

		return s.enqueueEvents(ctx, uow, order.PullEvents(), now)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s enqueueService) PayOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	now := s.clock()

	var order *domain.Order

	err := s.withUnitOfWork(ctx, func(uow ports.UnitOfWork) error {
		var err error

		order, err = uow.Orders().Find(ctx, orderID)
		if err != nil {
			return err
		}

		if err := order.Pay(now); err != nil {
			return err
		}

		uow.Orders().Save(order)

		return s.enqueueEvents(ctx, uow, order.PullEvents(), now)
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// withUnitOfWork runs fn inside a fresh transaction. Any failure rolls the
// whole unit back, so domain rows and outbox records stand or fall together.
func (s enqueueService) withUnitOfWork(ctx context.Context, fn func(uow ports.UnitOfWork) error) error {
	uow := s.uowFactory.New()

	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer uow.Rollback(ctx)

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Save(ctx); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (s enqueueService) enqueueEvents(ctx context.Context, uow ports.UnitOfWork, events []domain.DomainEvent, occurredOn time.Time) error {
	for _, event := range events {
		tag, payload, err := s.codec.Encode(event)
		if err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}

		record, err := domain.NewOutboxRecord(tag.String(), payload, occurredOn)
		if err != nil {
			return fmt.Errorf("failed to build outbox record: %w", err)
		}

		uow.Outbox().Insert(record)

		s.metrics.RecordEnqueue(ctx, tag.String(), 1)

		s.logger.Debug().
			Str("record_id", record.ID.String()).
			Str("event_type", tag.String()).
			Msg("outbox record enqueued")
	}

	return nil
}
