package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/courier"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// casOrderRepository is an in-memory order repository whose ClaimForCourier
// mimics the database's conditional update: the claim applies only while
// the order has no courier, and concurrent claims are serialized.
type casOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func newCASOrderRepository() *casOrderRepository {
	return &casOrderRepository{orders: make(map[string]*order.Order)}
}

func (r *casOrderRepository) Add(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID().String()] = o
	return nil
}

func (r *casOrderRepository) Update(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID().String()] = o
	return nil
}

func (r *casOrderRepository) UpdateWithExpectedStatus(_ context.Context, o *order.Order, expected order.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID().String()]
	if !ok {
		return errs.NewObjectNotFoundError("order", o.ID())
	}
	if stored.Status() != expected {
		return errs.NewConflictError("order status")
	}
	r.orders[o.ID().String()] = o
	return nil
}

func (r *casOrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id)
	}
	return o, nil
}

func (r *casOrderRepository) GetAllAvailable(_ context.Context) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		if o.Courier() == nil && (o.Status() == order.Ready || o.Status() == order.AcceptedByMerchant) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *casOrderRepository) ClaimForCourier(_ context.Context, orderID, courierID kernel.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[orderID.String()]
	if !ok {
		return errs.NewObjectNotFoundError("order", orderID)
	}

	if err := stored.AssignCourier(courierID, time.Now().UTC()); err != nil {
		return errs.NewConflictErrorWithCause("claim", err)
	}
	return nil
}

// activeCourierRepository returns an active courier for every ID.
type activeCourierRepository struct{}

func (activeCourierRepository) Add(context.Context, *courier.Courier) error    { return nil }
func (activeCourierRepository) Update(context.Context, *courier.Courier) error { return nil }

func (activeCourierRepository) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	return courier.RestoreCourier(id, "Any Courier", "+1 555 000 0000", true)
}

func (activeCourierRepository) GetAllActive(context.Context) ([]*courier.Courier, error) {
	return nil, nil
}

func TestClaimOrderCommandHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("should claim a ready order for an active courier", func(t *testing.T) {
		repo := newCASOrderRepository()
		aggregate := orderInStatus(t, order.Ready, nil)
		require.NoError(t, repo.Add(ctx, aggregate))

		uow := &stubUoW{orders: repo, couriers: activeCourierRepository{}}
		handler := commands.NewClaimOrderCommandHandler(stubOrderCourierUoWFactory{uow: uow}, nil)

		courierID := kernel.NewUUID()
		cmd, err := commands.NewClaimOrderCommand(aggregate.ID(), courierID)
		require.NoError(t, err)

		err = handler.Handle(ctx, cmd)

		require.NoError(t, err)
		claimed, err := repo.Get(ctx, aggregate.ID())
		require.NoError(t, err)
		assert.Equal(t, order.AssignedToCourier, claimed.Status())
		require.NotNil(t, claimed.Courier())
		assert.True(t, claimed.Courier().IsEqual(courierID))
	})

	t.Run("should reject claim by an inactive courier", func(t *testing.T) {
		repo := newCASOrderRepository()
		aggregate := orderInStatus(t, order.Ready, nil)
		require.NoError(t, repo.Add(ctx, aggregate))

		couriers := new(MockCourierRepository)
		inactive, err := courier.RestoreCourier(kernel.NewUUID(), "Dormant", "+1 555 111 2222", false)
		require.NoError(t, err)
		couriers.On("Get", ctx, inactive.ID()).Return(inactive, nil)

		uow := &stubUoW{orders: repo, couriers: couriers}
		handler := commands.NewClaimOrderCommandHandler(stubOrderCourierUoWFactory{uow: uow}, nil)

		cmd, err := commands.NewClaimOrderCommand(aggregate.ID(), inactive.ID())
		require.NoError(t, err)

		err = handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
		unclaimed, err := repo.Get(ctx, aggregate.ID())
		require.NoError(t, err)
		assert.Nil(t, unclaimed.Courier())
	})

	t.Run("should report conflict for an already assigned order", func(t *testing.T) {
		repo := newCASOrderRepository()
		aggregate := orderInStatus(t, order.Ready, nil)
		require.NoError(t, repo.Add(ctx, aggregate))
		require.NoError(t, repo.ClaimForCourier(ctx, aggregate.ID(), kernel.NewUUID()))

		uow := &stubUoW{orders: repo, couriers: activeCourierRepository{}}
		handler := commands.NewClaimOrderCommandHandler(stubOrderCourierUoWFactory{uow: uow}, nil)

		cmd, err := commands.NewClaimOrderCommand(aggregate.ID(), kernel.NewUUID())
		require.NoError(t, err)

		err = handler.Handle(ctx, cmd)

		assert.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("should report not found for a missing order", func(t *testing.T) {
		repo := newCASOrderRepository()
		uow := &stubUoW{orders: repo, couriers: activeCourierRepository{}}
		handler := commands.NewClaimOrderCommandHandler(stubOrderCourierUoWFactory{uow: uow}, nil)

		cmd, err := commands.NewClaimOrderCommand(kernel.NewUUID(), kernel.NewUUID())
		require.NoError(t, err)

		err = handler.Handle(ctx, cmd)

		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should let exactly one of 100 concurrent claims win", func(t *testing.T) {
		repo := newCASOrderRepository()
		aggregate := orderInStatus(t, order.Ready, nil)
		require.NoError(t, repo.Add(ctx, aggregate))

		const claimants = 100
		results := make(chan error, claimants)

		var wg sync.WaitGroup
		for i := 0; i < claimants; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				uow := &stubUoW{orders: repo, couriers: activeCourierRepository{}}
				handler := commands.NewClaimOrderCommandHandler(stubOrderCourierUoWFactory{uow: uow}, nil)

				cmd, err := commands.NewClaimOrderCommand(aggregate.ID(), kernel.NewUUID())
				if err != nil {
					results <- err
					return
				}
				results <- handler.Handle(ctx, cmd)
			}()
		}
		wg.Wait()
		close(results)

		winners, losers := 0, 0
		for err := range results {
			if err == nil {
				winners++
				continue
			}
			require.ErrorIs(t, err, errs.ErrConflict)
			losers++
		}

		assert.Equal(t, 1, winners)
		assert.Equal(t, claimants-1, losers)

		claimed, err := repo.Get(ctx, aggregate.ID())
		require.NoError(t, err)
		assert.Equal(t, order.AssignedToCourier, claimed.Status())
		assert.NotNil(t, claimed.Courier())
	})
}

var _ ports.OrderRepository = (*casOrderRepository)(nil)
var _ ports.CourierRepository = activeCourierRepository{}
