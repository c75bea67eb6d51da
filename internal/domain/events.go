package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeCustomerRegistered EventTypeTag = "customer.registered"
	EventTypeOrderPlaced        EventTypeTag = "order.placed"
	EventTypeOrderPaid          EventTypeTag = "order.paid"
)

type (
	// EventTypeTag uniquely names an event schema. The engine treats it as
	// opaque; only the codec registry interprets it.
	EventTypeTag string

	// DomainEvent is a value emitted by a command's mutation of an
	// aggregate, describing what changed.
	DomainEvent interface {
		TypeTag() EventTypeTag
	}

	CustomerRegistered struct {
		CustomerID   uuid.UUID `json:"customer_id"`
		Email        string    `json:"email"`
		FullName     string    `json:"full_name"`
		RegisteredAt time.Time `json:"registered_at"`
	}

	OrderPlaced struct {
		OrderID     uuid.UUID `json:"order_id"`
		CustomerID  uuid.UUID `json:"customer_id"`
		AmountCents int64     `json:"amount_cents"`
		Currency    string    `json:"currency"`
		PlacedAt    time.Time `json:"placed_at"`
	}

	OrderPaid struct {
		OrderID uuid.UUID `json:"order_id"`
		PaidAt  time.Time `json:"paid_at"`
	}
)

func (e CustomerRegistered) TypeTag() EventTypeTag { return EventTypeCustomerRegistered }

func (e OrderPlaced) TypeTag() EventTypeTag { return EventTypeOrderPlaced }

func (e OrderPaid) TypeTag() EventTypeTag { return EventTypeOrderPaid }

// ShortName returns the last segment of the tag, used as the broker-level
// subject and as the fallback destination name.
func (t EventTypeTag) ShortName() string {
	segments := strings.Split(string(t), ".")

	return segments[len(segments)-1]
}

func (t EventTypeTag) String() string { return string(t) }
