package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusPlaced OrderStatus = "placed"
	OrderStatusPaid   OrderStatus = "paid"
)

type (
	OrderStatus string

	// Customer is a minimal aggregate root that exists to exercise the
	// outbox engine; the interesting behaviour lives in the enqueue path.
	Customer struct {
		ID           uuid.UUID `json:"id"`
		Email        string    `json:"email"`
		FullName     string    `json:"full_name"`
		RegisteredAt time.Time `json:"registered_at"`

		pendingEvents []DomainEvent
	}

	Order struct {
		ID          uuid.UUID   `json:"id"`
		CustomerID  uuid.UUID   `json:"customer_id"`
		Status      OrderStatus `json:"status"`
		AmountCents int64       `json:"amount_cents"`
		Currency    string      `json:"currency"`
		PlacedAt    time.Time   `json:"placed_at"`
		PaidAt      *time.Time  `json:"paid_at,omitempty"`

		pendingEvents []DomainEvent
	}
)

func RegisterCustomer(email, fullName string, now time.Time) (*Customer, error) {
	if email == "" {
		return nil, NewValidationError("email", "must not be empty")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	customer := &Customer{
		ID:           id,
		Email:        email,
		FullName:     fullName,
		RegisteredAt: now.UTC(),
	}

	customer.raise(CustomerRegistered{
		CustomerID:   customer.ID,
		Email:        customer.Email,
		FullName:     customer.FullName,
		RegisteredAt: customer.RegisteredAt,
	})

	return customer, nil
}

func (c *Customer) raise(event DomainEvent) {
	c.pendingEvents = append(c.pendingEvents, event)
}

// PullEvents drains the events emitted since the aggregate was loaded.
// Events are emitted in the order the mutations happened.
func (c *Customer) PullEvents() []DomainEvent {
	events := c.pendingEvents
	c.pendingEvents = nil

	return events
}

func PlaceOrder(customerID uuid.UUID, amountCents int64, currency string, now time.Time) (*Order, error) {
	if amountCents <= 0 {
		return nil, NewValidationError("amount_cents", "must be positive")
	}

	if currency == "" {
		return nil, NewValidationError("currency", "must not be empty")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	order := &Order{
		ID:          id,
		CustomerID:  customerID,
		Status:      OrderStatusPlaced,
		AmountCents: amountCents,
		Currency:    currency,
		PlacedAt:    now.UTC(),
	}

	order.raise(OrderPlaced{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		AmountCents: order.AmountCents,
		Currency:    order.Currency,
		PlacedAt:    order.PlacedAt,
	})

	return order, nil
}

// Pay transitions the order to paid. Paying twice is a domain-rule
// violation, not an idempotent no-op: the caller must not retry blindly.
func (o *Order) Pay(now time.Time) error {
	if o.Status != OrderStatusPlaced {
		return &InvalidStateTransitionError{
			From: string(o.Status),
			To:   string(OrderStatusPaid),
		}
	}

	when := now.UTC()
	o.Status = OrderStatusPaid
	o.PaidAt = &when

	o.raise(OrderPaid{
		OrderID: o.ID,
		PaidAt:  when,
	})

	return nil
}

func (o *Order) raise(event DomainEvent) {
	o.pendingEvents = append(o.pendingEvents, event)
}

// PullEvents drains the events emitted since the aggregate was loaded.
func (o *Order) PullEvents() []DomainEvent {
	events := o.pendingEvents
	o.pendingEvents = nil

	return events
}
