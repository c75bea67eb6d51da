package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/svc-order-outbox/internal/domain"
)

func TestRegisterCustomer(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	customer, err := domain.RegisterCustomer("ada@example.com", "Ada Lovelace", now)
	require.NoError(t, err)

	events := customer.PullEvents()
	require.Len(t, events, 1)

	registered, ok := events[0].(domain.CustomerRegistered)
	require.True(t, ok)
	assert.Equal(t, customer.ID, registered.CustomerID)
	assert.Equal(t, "ada@example.com", registered.Email)
	assert.Equal(t, now, registered.RegisteredAt)

	assert.Empty(t, customer.PullEvents(), "events must be drained after the first pull")
}

func TestRegisterCustomerRequiresEmail(t *testing.T) {
	t.Parallel()

	_, err := domain.RegisterCustomer("", "Ada Lovelace", time.Now())

	assert.True(t, domain.IsDomainRule(err))
}

func TestPlaceOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		amountCents int64
		currency    string
		wantErr     bool
	}{
		{name: "valid order", amountCents: 1999, currency: "EUR"},
		{name: "zero amount", amountCents: 0, currency: "EUR", wantErr: true},
		{name: "negative amount", amountCents: -5, currency: "EUR", wantErr: true},
		{name: "missing currency", amountCents: 1999, currency: "", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			order, err := domain.PlaceOrder(uuid.New(), tt.amountCents, tt.currency, time.Now())

			if tt.wantErr {
				assert.True(t, domain.IsDomainRule(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.OrderStatusPlaced, order.Status)

			events := order.PullEvents()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventTypeOrderPlaced, events[0].TypeTag())
		})
	}
}

func TestPayOrder(t *testing.T) {
	t.Parallel()

	order, err := domain.PlaceOrder(uuid.New(), 1999, "EUR", time.Now())
	require.NoError(t, err)
	order.PullEvents()

	paidAt := time.Date(2026, 8, 24, 15, 0, 0, 0, time.UTC)
	require.NoError(t, order.Pay(paidAt))

	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, paidAt, *order.PaidAt)

	events := order.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeOrderPaid, events[0].TypeTag())
}

func TestPayOrderTwiceIsRejected(t *testing.T) {
	t.Parallel()

	order, err := domain.PlaceOrder(uuid.New(), 500, "USD", time.Now())
	require.NoError(t, err)

	require.NoError(t, order.Pay(time.Now()))
	order.PullEvents()

	err = order.Pay(time.Now())

	assert.True(t, domain.IsDomainRule(err))
	assert.Empty(t, order.PullEvents(), "a rejected command must not emit events")
}
