package cmd

import (
	"log/slog"

	httpin "marketplace/internal/adapters/in/http"
	"marketplace/internal/adapters/out/geo"
	"marketplace/internal/adapters/out/notify"
	"marketplace/internal/adapters/out/payments"
	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/storeconfig"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot wires the adapters into the use cases. All handlers share
// one unit of work factory; each Create method narrows it to the repository
// surface that handler declared.
type CompositionRoot struct {
	gormDB      *gorm.DB
	uowFactory  postgres.GormUnitOfWorkFactory
	storeConfig ports.StoreConfigProvider
	geoClient   ports.GeoClient
	payments    ports.PaymentGateway
	notifier    ports.Notifier
	logger      *slog.Logger
}

func NewCompositionRoot(
	_ Config,
	gormDB *gorm.DB,
	storeConfig ports.StoreConfig,
	deliveryDistanceKm float64,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		storeConfig: storeconfig.NewStaticProvider(storeConfig),
		geoClient:   geo.NewStaticClient(deliveryDistanceKm),
		payments:    payments.NewAutoConfirmGateway(logger),
		notifier:    notify.NewSlogNotifier(logger),
		logger:      logger,
	}
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	var f commands.OrderLedgerUoWFactory = FuncOrderLedgerUoWFactory(func() commands.OrderLedgerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPlaceOrderCommandHandler(
		f,
		c.storeConfig,
		services.NewDeliveryFeeCalculator(c.geoClient),
		c.notifier,
	)
}

func (c *CompositionRoot) CreateAdvanceOrderCommandHandler() commands.AdvanceOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdvanceOrderCommandHandler(f, c.notifier)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	var f commands.OrderCourierUoWFactory = FuncOrderCourierUoWFactory(func() commands.OrderCourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewClaimOrderCommandHandler(f, c.notifier)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteDeliveryCommandHandler(f, c.payments, c.notifier)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.OrderLedgerUoWFactory = FuncOrderLedgerUoWFactory(func() commands.OrderLedgerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.notifier)
}

func (c *CompositionRoot) CreateRefundOrderCommandHandler() commands.RefundOrderCommandHandler {
	var f commands.OrderLedgerUoWFactory = FuncOrderLedgerUoWFactory(func() commands.OrderLedgerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRefundOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateSettleMerchantCommandHandler() commands.SettleMerchantCommandHandler {
	var f commands.LedgerUoWFactory = FuncLedgerUoWFactory(func() commands.LedgerUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSettleMerchantCommandHandler(f)
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	var f commands.CourierUoWFactory = FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCourierCommandHandler(f)
}

func (c *CompositionRoot) CreateGetAvailableOrdersQueryHandler() queries.GetAvailableOrdersQueryHandler {
	return queries.NewGetAvailableOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAccountBalanceQueryHandler() queries.GetAccountBalanceQueryHandler {
	return queries.NewGetAccountBalanceQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTrialBalanceQueryHandler() queries.GetTrialBalanceQueryHandler {
	return queries.NewGetTrialBalanceQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.gormDB)
}

// CreateHTTPServer assembles the API server from all handlers.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreatePlaceOrderCommandHandler(),
		c.CreateAdvanceOrderCommandHandler(),
		c.CreateClaimOrderCommandHandler(),
		c.CreateCompleteDeliveryCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateRefundOrderCommandHandler(),
		c.CreateSettleMerchantCommandHandler(),
		c.CreateCreateCourierCommandHandler(),
		c.CreateGetAvailableOrdersQueryHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetAccountBalanceQueryHandler(),
		c.CreateGetTrialBalanceQueryHandler(),
		c.CreateGetAllCouriersQueryHandler(),
	)
}

// CreateJobManager assembles the background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateGetTrialBalanceQueryHandler(), c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncOrderLedgerUoWFactory func() commands.OrderLedgerUoW

func (f FuncOrderLedgerUoWFactory) Create() commands.OrderLedgerUoW {
	return f()
}

type FuncOrderCourierUoWFactory func() commands.OrderCourierUoW

func (f FuncOrderCourierUoWFactory) Create() commands.OrderCourierUoW {
	return f()
}

type FuncLedgerUoWFactory func() commands.LedgerUoW

func (f FuncLedgerUoWFactory) Create() commands.LedgerUoW {
	return f()
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}
