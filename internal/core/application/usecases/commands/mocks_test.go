package commands_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/courier"
	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateWithExpectedStatus(ctx context.Context, o *order.Order, expected order.Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllAvailable(ctx context.Context) ([]*order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ClaimForCourier(ctx context.Context, orderID, courierID kernel.UUID) error {
	args := m.Called(ctx, orderID, courierID)
	return args.Error(0)
}

type MockLedgerRepository struct{ mock.Mock }

func (m *MockLedgerRepository) Append(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) LockAccount(ctx context.Context, account ledger.AccountCode) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByReference(
	ctx context.Context, refType ledger.ReferenceType, refID kernel.UUID,
) ([]*ledger.Entry, error) {
	args := m.Called(ctx, refType, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) BalanceOf(ctx context.Context, account ledger.AccountCode) (kernel.Money, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(kernel.Money), args.Error(1)
}

func (m *MockLedgerRepository) TrialBalance(ctx context.Context) (kernel.Money, error) {
	args := m.Called(ctx)
	return args.Get(0).(kernel.Money), args.Error(1)
}

type MockCourierRepository struct{ mock.Mock }

func (m *MockCourierRepository) Add(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Update(ctx context.Context, c *courier.Courier) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCourierRepository) Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courier.Courier), args.Error(1)
}

func (m *MockCourierRepository) GetAllActive(ctx context.Context) ([]*courier.Courier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*courier.Courier), args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, change order.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) ConfirmPayment(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockStoreConfigProvider struct{ mock.Mock }

func (m *MockStoreConfigProvider) CurrentConfig(ctx context.Context, storeID kernel.UUID) (ports.StoreConfig, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).(ports.StoreConfig), args.Error(1)
}

type MockGeoClient struct{ mock.Mock }

func (m *MockGeoClient) Distance(ctx context.Context, origin, destination string) (ports.Distance, error) {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(ports.Distance), args.Error(1)
}

// stubUoW satisfies every unit of work shape the handlers need. Begin,
// Commit and Rollback always succeed; the repositories are injected per test.
type stubUoW struct {
	orders   ports.OrderRepository
	entries  ports.LedgerRepository
	couriers ports.CourierRepository

	commits   int
	rollbacks int
}

func (u *stubUoW) Begin(context.Context) error { return nil }

func (u *stubUoW) Commit(context.Context) error {
	u.commits++
	return nil
}

func (u *stubUoW) Rollback(context.Context) error {
	u.rollbacks++
	return nil
}

func (u *stubUoW) OrderRepository() ports.OrderRepository     { return u.orders }
func (u *stubUoW) LedgerRepository() ports.LedgerRepository   { return u.entries }
func (u *stubUoW) CourierRepository() ports.CourierRepository { return u.couriers }

type stubOrderLedgerUoWFactory struct{ uow *stubUoW }

func (f stubOrderLedgerUoWFactory) Create() commands.OrderLedgerUoW { return f.uow }

type stubOrderUoWFactory struct{ uow *stubUoW }

func (f stubOrderUoWFactory) Create() commands.OrderUoW { return f.uow }

type stubOrderCourierUoWFactory struct{ uow *stubUoW }

func (f stubOrderCourierUoWFactory) Create() commands.OrderCourierUoW { return f.uow }

type stubLedgerUoWFactory struct{ uow *stubUoW }

func (f stubLedgerUoWFactory) Create() commands.LedgerUoW { return f.uow }

type stubCourierUoWFactory struct{ uow *stubUoW }

func (f stubCourierUoWFactory) Create() commands.CourierUoW { return f.uow }

// Shared fixtures.

func testSnapshot(t *testing.T) finance.FinancialSnapshot {
	t.Helper()

	line, err := finance.NewOrderLine(kernel.NewUUID(), kernel.MustMoney("115.00"), 2)
	require.NoError(t, err)

	snap, err := finance.ComputeSnapshot(
		[]finance.OrderLine{line},
		kernel.MustMoney("11.50"),
		kernel.MustRate("0.15"),
		kernel.MustRate("0.10"),
	)
	require.NoError(t, err)

	return snap
}

func testOrderLines(t *testing.T) []finance.OrderLine {
	t.Helper()

	line, err := finance.NewOrderLine(kernel.NewUUID(), kernel.MustMoney("115.00"), 2)
	require.NoError(t, err)

	return []finance.OrderLine{line}
}

func orderInStatus(t *testing.T, target order.Status, courierID *kernel.UUID) *order.Order {
	t.Helper()

	now := time.Now().UTC()
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), testSnapshot(t), now)
	require.NoError(t, err)

	advance := func(fn func() error) {
		t.Helper()
		require.NoError(t, fn())
	}

	switch target {
	case order.New:
	case order.AcceptedByMerchant:
		advance(func() error { return o.Accept(now) })
	case order.Preparing:
		advance(func() error { return o.Accept(now) })
		advance(func() error { return o.StartPreparing(now) })
	case order.Ready:
		advance(func() error { return o.Accept(now) })
		advance(func() error { return o.StartPreparing(now) })
		advance(func() error { return o.MarkReady(now) })
	case order.OnTheWay, order.Delivered:
		cid := kernel.NewUUID()
		if courierID != nil {
			cid = *courierID
		}
		advance(func() error { return o.Accept(now) })
		advance(func() error { return o.StartPreparing(now) })
		advance(func() error { return o.MarkReady(now) })
		advance(func() error { return o.AssignCourier(cid, now) })
		advance(func() error { return o.MarkPickedUp(cid, now) })
		advance(func() error { return o.MarkOnTheWay(now) })
		if target == order.Delivered {
			advance(func() error { return o.MarkDelivered(now) })
		}
	default:
		t.Fatalf("unsupported fixture status %s", target)
	}

	o.ClearPendingEvents()
	return o
}
