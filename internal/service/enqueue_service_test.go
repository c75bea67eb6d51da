package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/svc-order-outbox/internal/domain"
	"github.com/architeacher/svc-order-outbox/internal/eventcodec"
	"github.com/architeacher/svc-order-outbox/internal/infrastructure"
	"github.com/architeacher/svc-order-outbox/internal/ports"
	"github.com/architeacher/svc-order-outbox/internal/service"
)

type (
	fakeUnitOfWork struct {
		orders    map[uuid.UUID]*domain.Order
		customers map[uuid.UUID]*domain.Customer
		inserted  []*domain.OutboxRecord

		savedOrders    []*domain.Order
		savedCustomers []*domain.Customer

		began      bool
		saved      bool
		committed  bool
		rolledBack bool

		saveErr error
	}

	fakeFactory struct {
		uow *fakeUnitOfWork
	}

	fakeOrderStore struct {
		uow *fakeUnitOfWork
	}

	fakeCustomerStore struct {
		uow *fakeUnitOfWork
	}

	fakeOutboxStore struct {
		uow *fakeUnitOfWork
	}
)

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		orders:    make(map[uuid.UUID]*domain.Order),
		customers: make(map[uuid.UUID]*domain.Customer),
	}
}

func (f *fakeFactory) New() ports.UnitOfWork { return f.uow }

func (u *fakeUnitOfWork) Begin(context.Context) error {
	u.began = true

	return nil
}

func (u *fakeUnitOfWork) Save(context.Context) error {
	if u.saveErr != nil {
		return u.saveErr
	}

	u.saved = true

	return nil
}

func (u *fakeUnitOfWork) Commit(context.Context) error {
	u.committed = true

	return nil
}

func (u *fakeUnitOfWork) Rollback(context.Context) {
	if !u.committed {
		u.rolledBack = true
	}
}

func (u *fakeUnitOfWork) Orders() ports.OrderStore       { return &fakeOrderStore{uow: u} }
func (u *fakeUnitOfWork) Customers() ports.CustomerStore { return &fakeCustomerStore{uow: u} }
func (u *fakeUnitOfWork) Outbox() ports.OutboxStore      { return &fakeOutboxStore{uow: u} }

func (s *fakeOrderStore) Find(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, ok := s.uow.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	return order, nil
}

func (s *fakeOrderStore) Save(order *domain.Order) {
	s.uow.savedOrders = append(s.uow.savedOrders, order)
}

func (s *fakeCustomerStore) Find(_ context.Context, customerID uuid.UUID) (*domain.Customer, error) {
	customer, ok := s.uow.customers[customerID]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}

	return customer, nil
}

func (s *fakeCustomerStore) Save(customer *domain.Customer) {
	s.uow.savedCustomers = append(s.uow.savedCustomers, customer)
}

func (s *fakeOutboxStore) Insert(record *domain.OutboxRecord) {
	s.uow.inserted = append(s.uow.inserted, record)
}

func newEnqueueService(uow *fakeUnitOfWork, clock func() time.Time) service.EnqueueService {
	return service.NewEnqueueService(
		&fakeFactory{uow: uow},
		eventcodec.DefaultRegistry(),
		clock,
		infrastructure.NewNop(),
		&infrastructure.NoOpMetrics{},
	)
}

func TestPlaceOrderEnqueuesOneRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	uow := newFakeUnitOfWork()
	svc := newEnqueueService(uow, func() time.Time { return now })

	order, err := svc.PlaceOrder(context.Background(), uuid.New(), 1999, "EUR")
	require.NoError(t, err)

	assert.True(t, uow.committed)
	require.Len(t, uow.savedOrders, 1)
	require.Len(t, uow.inserted, 1)

	record := uow.inserted[0]
	assert.Equal(t, "order.placed", record.TypeTag)
	assert.Equal(t, now, record.OccurredOnUTC)
	assert.Zero(t, record.Attempts)

	decoded, err := eventcodec.DefaultRegistry().Decode(domain.EventTypeOrderPlaced, record.Payload)
	require.NoError(t, err)
	assert.Equal(t, order.ID, decoded.(domain.OrderPlaced).OrderID)
}

func TestRegisterCustomerEnqueuesOneRecord(t *testing.T) {
	t.Parallel()

	uow := newFakeUnitOfWork()
	svc := newEnqueueService(uow, nil)

	_, err := svc.RegisterCustomer(context.Background(), "ada@example.com", "Ada Lovelace")
	require.NoError(t, err)

	assert.True(t, uow.committed)
	require.Len(t, uow.savedCustomers, 1)
	require.Len(t, uow.inserted, 1)
	assert.Equal(t, "customer.registered", uow.inserted[0].TypeTag)
}

func TestPlaceOrderRejectedByDomainRule(t *testing.T) {
	t.Parallel()

	uow := newFakeUnitOfWork()
	svc := newEnqueueService(uow, nil)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), -1, "EUR")

	assert.True(t, domain.IsDomainRule(err))
	assert.False(t, uow.began, "a rejected command must not open a transaction")
	assert.Empty(t, uow.inserted)
}

func TestPayOrderRollsBackOnInvalidTransition(t *testing.T) {
	t.Parallel()

	order, err := domain.PlaceOrder(uuid.New(), 500, "USD", time.Now())
	require.NoError(t, err)
	order.PullEvents()
	require.NoError(t, order.Pay(time.Now()))
	order.PullEvents()

	uow := newFakeUnitOfWork()
	uow.orders[order.ID] = order
	svc := newEnqueueService(uow, nil)

	_, err = svc.PayOrder(context.Background(), order.ID)

	assert.True(t, domain.IsDomainRule(err))
	assert.True(t, uow.rolledBack)
	assert.False(t, uow.committed)
	assert.Empty(t, uow.inserted, "no record may exist for a rejected command")
}

func TestPayOrderEnqueuesPaidEvent(t *testing.T) {
	t.Parallel()

	order, err := domain.PlaceOrder(uuid.New(), 500, "USD", time.Now())
	require.NoError(t, err)
	order.PullEvents()

	uow := newFakeUnitOfWork()
	uow.orders[order.ID] = order
	svc := newEnqueueService(uow, nil)

	paid, err := svc.PayOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPaid, paid.Status)
	assert.True(t, uow.committed)
	require.Len(t, uow.inserted, 1)
	assert.Equal(t, "order.paid", uow.inserted[0].TypeTag)
}

func TestEnqueueSurfacesStorageFailure(t *testing.T) {
	t.Parallel()

	uow := newFakeUnitOfWork()
	uow.saveErr = errors.New("storage down")
	svc := newEnqueueService(uow, nil)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), 1999, "EUR")

	require.Error(t, err)
	assert.True(t, uow.rolledBack)
	assert.False(t, uow.committed)
}
