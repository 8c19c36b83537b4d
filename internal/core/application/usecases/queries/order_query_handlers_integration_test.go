package queries_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/adapters/out/postgres/ledgerrepo"
	"marketplace/internal/adapters/out/postgres/orderrepo"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OrderQueryHandlersTestSuite exercises the order and ledger read models
// against a real database: the availability listing, the order detail view,
// account balances and the trial balance.
type OrderQueryHandlersTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
}

func (suite *OrderQueryHandlersTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderEventDTO{},
		&ledgerrepo.EntryDTO{},
		&ledgerrepo.EntryLineDTO{},
	)
	suite.Require().NoError(err)
}

func (suite *OrderQueryHandlersTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *OrderQueryHandlersTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, order_events, ledger_entries, ledger_entry_lines").Error
	suite.Require().NoError(err)
}

func (suite *OrderQueryHandlersTestSuite) TestGetAvailableOrders_ListsClaimableOldestFirst() {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, &noopAggregateTracker{})

	older := suite.createTestOrder(time.Now().UTC().Add(-time.Hour))
	suite.advanceToReady(older)
	suite.Require().NoError(repo.Add(ctx, older))

	newer := suite.createTestOrder(time.Now().UTC())
	suite.Require().NoError(newer.Accept(time.Now().UTC()))
	newer.ClearPendingEvents()
	suite.Require().NoError(repo.Add(ctx, newer))

	unclaimable := suite.createTestOrder(time.Now().UTC())
	suite.Require().NoError(repo.Add(ctx, unclaimable))

	handler := queries.NewGetAvailableOrdersQueryHandler(suite.db)
	result, err := handler.Handle(ctx, queries.NewGetAvailableOrdersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	suite.True(result[0].ID.IsEqual(older.ID()))
	suite.Equal(order.Ready, result[0].Status)
	suite.True(result[0].OrderTotal.IsEqual(older.Snapshot().OrderTotal()))
	suite.True(result[1].ID.IsEqual(newer.ID()))
	suite.Equal(order.AcceptedByMerchant, result[1].Status)
}

func (suite *OrderQueryHandlersTestSuite) TestGetAvailableOrders_EmptyDatabase_ReturnsEmptySlice() {
	handler := queries.NewGetAvailableOrdersQueryHandler(suite.db)

	result, err := handler.Handle(context.Background(), queries.NewGetAvailableOrdersQuery())

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *OrderQueryHandlersTestSuite) TestGetOrder_ReturnsSnapshotAndTimeline() {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, &noopAggregateTracker{})

	testOrder := suite.createTestOrder(time.Now().UTC())
	suite.advanceToReady(testOrder)
	suite.Require().NoError(repo.Add(ctx, testOrder))

	query, err := queries.NewGetOrderQuery(testOrder.ID())
	suite.Require().NoError(err)

	handler := queries.NewGetOrderQueryHandler(suite.db)
	detail, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.True(detail.ID.IsEqual(testOrder.ID()))
	suite.True(detail.StoreID.IsEqual(testOrder.StoreID()))
	suite.True(detail.CustomerID.IsEqual(testOrder.CustomerID()))
	suite.Nil(detail.CourierID)
	suite.Equal(order.Ready, detail.Status)
	suite.True(detail.Snapshot.OrderTotal.IsEqual(testOrder.Snapshot().OrderTotal()))
	suite.True(detail.Snapshot.MerchantPayout.IsEqual(testOrder.Snapshot().MerchantPayout()))
	suite.Require().Len(detail.Timeline, 4)
	suite.Equal(order.Unknown, detail.Timeline[0].From)
	suite.Equal(order.New, detail.Timeline[0].To)
	suite.Equal(order.Ready, detail.Timeline[3].To)
	suite.Equal(order.ActorMerchant, detail.Timeline[3].Actor)
}

func (suite *OrderQueryHandlersTestSuite) TestGetOrder_NotFound_ReturnsObjectNotFoundError() {
	query, err := queries.NewGetOrderQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	handler := queries.NewGetOrderQueryHandler(suite.db)
	_, err = handler.Handle(context.Background(), query)

	suite.Require().Error(err)
	suite.ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderQueryHandlersTestSuite) TestGetAccountBalance_FoldsDebitsMinusCredits() {
	ctx := context.Background()

	testOrder := suite.createTestOrder(time.Now().UTC())
	suite.appendOrderEntry(testOrder)

	query, err := queries.NewGetAccountBalanceQuery(ledger.AccountCash)
	suite.Require().NoError(err)

	handler := queries.NewGetAccountBalanceQueryHandler(suite.db)
	result, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal(ledger.AccountCash, result.Account)
	suite.True(result.Balance.IsEqual(testOrder.Snapshot().OrderTotal()))
}

func (suite *OrderQueryHandlersTestSuite) TestGetAccountBalance_MerchantPayableIsCreditNormal() {
	ctx := context.Background()

	testOrder := suite.createTestOrder(time.Now().UTC())
	suite.appendOrderEntry(testOrder)

	query, err := queries.NewGetAccountBalanceQuery(ledger.MerchantPayable(testOrder.StoreID()))
	suite.Require().NoError(err)

	handler := queries.NewGetAccountBalanceQueryHandler(suite.db)
	result, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.True(result.Balance.IsNegative())
	suite.True(result.Balance.Neg().IsEqual(testOrder.Snapshot().MerchantPayout()))
}

func (suite *OrderQueryHandlersTestSuite) TestGetAccountBalance_UntouchedAccount_ReturnsZero() {
	query, err := queries.NewGetAccountBalanceQuery(ledger.AccountDeliveryRevenue)
	suite.Require().NoError(err)

	handler := queries.NewGetAccountBalanceQueryHandler(suite.db)
	result, err := handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.True(result.Balance.IsZero())
}

func (suite *OrderQueryHandlersTestSuite) TestGetTrialBalance_ConsistentLedgerTotalsZero() {
	ctx := context.Background()

	testOrder := suite.createTestOrder(time.Now().UTC())
	suite.appendOrderEntry(testOrder)

	handler := queries.NewGetTrialBalanceQueryHandler(suite.db)
	result, err := handler.Handle(ctx, queries.NewGetTrialBalanceQuery())

	suite.Require().NoError(err)
	suite.True(result.Total.IsZero())
	suite.NotEmpty(result.Accounts)

	accounts := make(map[ledger.AccountCode]kernel.Money)
	for _, line := range result.Accounts {
		accounts[line.Account] = line.Balance
	}
	suite.True(accounts[ledger.AccountCash].IsEqual(testOrder.Snapshot().OrderTotal()))
}

func (suite *OrderQueryHandlersTestSuite) TestGetTrialBalance_EmptyJournal_ReturnsZeroTotal() {
	handler := queries.NewGetTrialBalanceQueryHandler(suite.db)

	result, err := handler.Handle(context.Background(), queries.NewGetTrialBalanceQuery())

	suite.Require().NoError(err)
	suite.True(result.Total.IsZero())
	suite.Empty(result.Accounts)
}

func (suite *OrderQueryHandlersTestSuite) createTestOrder(placedAt time.Time) *order.Order {
	line, err := finance.NewOrderLine(kernel.NewUUID(), kernel.MustMoney("115.00"), 2)
	suite.Require().NoError(err)

	snapshot, err := finance.ComputeSnapshot(
		[]finance.OrderLine{line},
		kernel.MustMoney("11.50"),
		kernel.MustRate("0.15"),
		kernel.MustRate("0.10"),
	)
	suite.Require().NoError(err)

	testOrder, err := order.NewOrder(
		kernel.NewUUID(),
		kernel.NewUUID(),
		kernel.NewUUID(),
		snapshot,
		placedAt,
	)
	suite.Require().NoError(err)
	testOrder.ClearPendingEvents()

	return testOrder
}

func (suite *OrderQueryHandlersTestSuite) advanceToReady(o *order.Order) {
	now := time.Now().UTC()
	suite.Require().NoError(o.Accept(now))
	suite.Require().NoError(o.StartPreparing(now))
	suite.Require().NoError(o.MarkReady(now))
	o.ClearPendingEvents()
}

func (suite *OrderQueryHandlersTestSuite) appendOrderEntry(testOrder *order.Order) {
	entry, err := ledger.NewOrderEntry(kernel.NewUUID(), testOrder.ID(), testOrder.StoreID(), testOrder.Snapshot())
	suite.Require().NoError(err)

	repo := ledgerrepo.NewGormLedgerRepository(suite.db)
	suite.Require().NoError(repo.Append(context.Background(), entry))
}

func TestOrderQueryHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(OrderQueryHandlersTestSuite))
}
