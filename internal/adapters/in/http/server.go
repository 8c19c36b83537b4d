package http

import (
	"errors"
	"net/http"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/finance"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/ledger"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server exposes the marketplace use cases over HTTP.
// It coordinates between HTTP handlers and application use cases:
// request bodies are parsed into commands and queries, domain errors are
// mapped to status codes, and responses are rendered from query results.
type Server struct {
	// Command handlers
	placeOrderHandler       commands.PlaceOrderCommandHandler
	advanceOrderHandler     commands.AdvanceOrderCommandHandler
	claimOrderHandler       commands.ClaimOrderCommandHandler
	completeDeliveryHandler commands.CompleteDeliveryCommandHandler
	cancelOrderHandler      commands.CancelOrderCommandHandler
	refundOrderHandler      commands.RefundOrderCommandHandler
	settleMerchantHandler   commands.SettleMerchantCommandHandler
	createCourierHandler    commands.CreateCourierCommandHandler

	// Query handlers
	getAvailableOrdersHandler queries.GetAvailableOrdersQueryHandler
	getOrderHandler           queries.GetOrderQueryHandler
	getAccountBalanceHandler  queries.GetAccountBalanceQueryHandler
	getTrialBalanceHandler    queries.GetTrialBalanceQueryHandler
	getAllCouriersHandler     queries.GetAllCouriersQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	placeOrderHandler commands.PlaceOrderCommandHandler,
	advanceOrderHandler commands.AdvanceOrderCommandHandler,
	claimOrderHandler commands.ClaimOrderCommandHandler,
	completeDeliveryHandler commands.CompleteDeliveryCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	refundOrderHandler commands.RefundOrderCommandHandler,
	settleMerchantHandler commands.SettleMerchantCommandHandler,
	createCourierHandler commands.CreateCourierCommandHandler,
	getAvailableOrdersHandler queries.GetAvailableOrdersQueryHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getAccountBalanceHandler queries.GetAccountBalanceQueryHandler,
	getTrialBalanceHandler queries.GetTrialBalanceQueryHandler,
	getAllCouriersHandler queries.GetAllCouriersQueryHandler,
) *Server {
	return &Server{
		placeOrderHandler:         placeOrderHandler,
		advanceOrderHandler:       advanceOrderHandler,
		claimOrderHandler:         claimOrderHandler,
		completeDeliveryHandler:   completeDeliveryHandler,
		cancelOrderHandler:        cancelOrderHandler,
		refundOrderHandler:        refundOrderHandler,
		settleMerchantHandler:     settleMerchantHandler,
		createCourierHandler:      createCourierHandler,
		getAvailableOrdersHandler: getAvailableOrdersHandler,
		getOrderHandler:           getOrderHandler,
		getAccountBalanceHandler:  getAccountBalanceHandler,
		getTrialBalanceHandler:    getTrialBalanceHandler,
		getAllCouriersHandler:     getAllCouriersHandler,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.PlaceOrder)
	api.GET("/orders/available", s.GetAvailableOrders)
	api.GET("/orders/:orderId", s.GetOrder)
	api.POST("/orders/:orderId/advance", s.AdvanceOrder)
	api.POST("/orders/:orderId/claim", s.ClaimOrder)
	api.POST("/orders/:orderId/complete", s.CompleteDelivery)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.POST("/orders/:orderId/refund", s.RefundOrder)

	api.POST("/settlements", s.SettleMerchant)
	api.GET("/accounts/trial-balance", s.GetTrialBalance)
	api.GET("/accounts/:account/balance", s.GetAccountBalance)

	api.POST("/couriers", s.CreateCourier)
	api.GET("/couriers", s.GetCouriers)
}

// Error is the JSON body returned for every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OrderLineRequest is one position of a new order: the price quoted to the
// customer at placement time, VAT inclusive.
type OrderLineRequest struct {
	ProductID string `json:"product_id"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderRequest is the body of POST /orders.
type PlaceOrderRequest struct {
	StoreID         string             `json:"store_id"`
	CustomerID      string             `json:"customer_id"`
	DeliveryAddress string             `json:"delivery_address"`
	Lines           []OrderLineRequest `json:"lines"`
}

// AdvanceOrderRequest is the body of POST /orders/:orderId/advance.
// CourierID is required only when the target is PickedUp.
type AdvanceOrderRequest struct {
	Target    string  `json:"target"`
	Actor     string  `json:"actor"`
	CourierID *string `json:"courier_id,omitempty"`
}

// ClaimOrderRequest is the body of POST /orders/:orderId/claim.
type ClaimOrderRequest struct {
	CourierID string `json:"courier_id"`
}

// CompleteDeliveryRequest is the body of POST /orders/:orderId/complete.
type CompleteDeliveryRequest struct {
	CourierID string `json:"courier_id"`
}

// CancelOrderRequest is the body of POST /orders/:orderId/cancel.
// Target picks the terminal state: Cancelled or Failed.
type CancelOrderRequest struct {
	Target string `json:"target"`
	Actor  string `json:"actor"`
}

// RefundLineRequest names a refunded position by product and quantity.
type RefundLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// RefundOrderRequest is the body of POST /orders/:orderId/refund.
type RefundOrderRequest struct {
	Lines             []RefundLineRequest `json:"lines"`
	RefundDeliveryFee bool                `json:"refund_delivery_fee"`
}

// SettleMerchantRequest is the body of POST /settlements.
type SettleMerchantRequest struct {
	StoreID string `json:"store_id"`
	Amount  string `json:"amount"`
}

// CreateCourierRequest is the body of POST /couriers.
type CreateCourierRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// CreatedResponse returns the server-generated identifier of a new resource.
type CreatedResponse struct {
	ID string `json:"id"`
}

// CourierResponse is one courier in GET /couriers.
type CourierResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Active bool   `json:"active"`
}

// AvailableOrderResponse is one claimable order in GET /orders/available.
type AvailableOrderResponse struct {
	ID         string       `json:"id"`
	StoreID    string       `json:"store_id"`
	Status     string       `json:"status"`
	OrderTotal kernel.Money `json:"order_total"`
	PlacedAt   string       `json:"placed_at"`
}

// TimelineEventResponse is one status change in an order's history.
type TimelineEventResponse struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Actor      string `json:"actor"`
	OccurredAt string `json:"occurred_at"`
}

// OrderResponse is the full order view of GET /orders/:orderId, including
// the frozen financial snapshot and the status timeline.
type OrderResponse struct {
	ID         string                  `json:"id"`
	StoreID    string                  `json:"store_id"`
	CustomerID string                  `json:"customer_id"`
	CourierID  *string                 `json:"courier_id,omitempty"`
	Status     string                  `json:"status"`
	Snapshot   finance.SnapshotRecord  `json:"snapshot"`
	PlacedAt   string                  `json:"placed_at"`
	UpdatedAt  string                  `json:"updated_at"`
	Timeline   []TimelineEventResponse `json:"timeline"`
}

// AccountBalanceResponse is the body of GET /accounts/:account/balance.
type AccountBalanceResponse struct {
	Account string       `json:"account"`
	Balance kernel.Money `json:"balance"`
}

// TrialBalanceLine is one account line of the trial balance report.
type TrialBalanceLine struct {
	Account string       `json:"account"`
	Balance kernel.Money `json:"balance"`
}

// TrialBalanceResponse is the body of GET /accounts/trial-balance.
type TrialBalanceResponse struct {
	Accounts []TrialBalanceLine `json:"accounts"`
	Total    kernel.Money       `json:"total"`
}

// PlaceOrder handles POST /api/v1/orders - places a new order.
// The order ID is generated server side and returned in the response.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var req PlaceOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	storeID, err := kernel.UUIDFromString(req.StoreID)
	if err != nil {
		return badRequest(ctx, "Invalid store ID: "+err.Error())
	}
	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return badRequest(ctx, "Invalid customer ID: "+err.Error())
	}

	lines := make([]finance.OrderLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		productID, lineErr := kernel.UUIDFromString(l.ProductID)
		if lineErr != nil {
			return badRequest(ctx, "Invalid product ID: "+lineErr.Error())
		}
		unitPrice, lineErr := kernel.NewMoneyFromString(l.UnitPrice)
		if lineErr != nil {
			return badRequest(ctx, "Invalid unit price: "+lineErr.Error())
		}
		line, lineErr := finance.NewOrderLine(productID, unitPrice, l.Quantity)
		if lineErr != nil {
			return badRequest(ctx, "Invalid order line: "+lineErr.Error())
		}
		lines = append(lines, line)
	}

	orderID := kernel.NewUUID()

	cmd, err := commands.NewPlaceOrderCommand(orderID, storeID, customerID, req.DeliveryAddress, lines)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: orderID.String()})
}

// AdvanceOrder handles POST /api/v1/orders/:orderId/advance - moves an order
// one step along its workflow on behalf of the given actor.
func (s *Server) AdvanceOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	var req AdvanceOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := order.StatusFromString(req.Target)
	if err != nil {
		return badRequest(ctx, "Invalid target status: "+err.Error())
	}
	actor, err := order.ActorFromString(req.Actor)
	if err != nil {
		return badRequest(ctx, "Invalid actor: "+err.Error())
	}

	var courierID *kernel.UUID
	if req.CourierID != nil {
		id, idErr := kernel.UUIDFromString(*req.CourierID)
		if idErr != nil {
			return badRequest(ctx, "Invalid courier ID: "+idErr.Error())
		}
		courierID = &id
	}

	cmd, err := commands.NewAdvanceOrderCommand(orderID, target, actor, courierID)
	if err != nil {
		return badRequest(ctx, "Invalid transition: "+err.Error())
	}

	if err := s.advanceOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ClaimOrder handles POST /api/v1/orders/:orderId/claim - assigns the order
// to the courier if it is still unassigned. Losing a race returns 409.
func (s *Server) ClaimOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	var req ClaimOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier ID: "+err.Error())
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, courierID)
	if err != nil {
		return badRequest(ctx, "Invalid claim data: "+err.Error())
	}

	if err := s.claimOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CompleteDelivery handles POST /api/v1/orders/:orderId/complete - marks the
// order delivered and posts its journal entry.
func (s *Server) CompleteDelivery(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	var req CompleteDeliveryRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(req.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier ID: "+err.Error())
	}

	cmd, err := commands.NewCompleteDeliveryCommand(orderID, courierID)
	if err != nil {
		return badRequest(ctx, "Invalid delivery data: "+err.Error())
	}

	if err := s.completeDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancel - moves the order
// to Cancelled or Failed, reversing its journal entry when one was posted.
func (s *Server) CancelOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	var req CancelOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	target, err := order.StatusFromString(req.Target)
	if err != nil {
		return badRequest(ctx, "Invalid target status: "+err.Error())
	}
	actor, err := order.ActorFromString(req.Actor)
	if err != nil {
		return badRequest(ctx, "Invalid actor: "+err.Error())
	}

	cmd, err := commands.NewCancelOrderCommand(orderID, target, actor)
	if err != nil {
		return badRequest(ctx, "Invalid cancellation: "+err.Error())
	}

	if err := s.cancelOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RefundOrder handles POST /api/v1/orders/:orderId/refund - refunds part of a
// delivered order using the unit prices frozen in its snapshot.
func (s *Server) RefundOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	var req RefundOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	lines := make([]commands.RefundLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		productID, lineErr := kernel.UUIDFromString(l.ProductID)
		if lineErr != nil {
			return badRequest(ctx, "Invalid product ID: "+lineErr.Error())
		}
		lines = append(lines, commands.RefundLine{ProductID: productID, Quantity: l.Quantity})
	}

	cmd, err := commands.NewRefundOrderCommand(orderID, lines, req.RefundDeliveryFee)
	if err != nil {
		return badRequest(ctx, "Invalid refund data: "+err.Error())
	}

	if err := s.refundOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// SettleMerchant handles POST /api/v1/settlements - pays out part of a
// merchant's accumulated balance. The settlement ID is generated server side.
func (s *Server) SettleMerchant(ctx echo.Context) error {
	var req SettleMerchantRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	storeID, err := kernel.UUIDFromString(req.StoreID)
	if err != nil {
		return badRequest(ctx, "Invalid store ID: "+err.Error())
	}
	amount, err := kernel.NewMoneyFromString(req.Amount)
	if err != nil {
		return badRequest(ctx, "Invalid amount: "+err.Error())
	}

	settlementID := kernel.NewUUID()

	cmd, err := commands.NewSettleMerchantCommand(settlementID, storeID, amount)
	if err != nil {
		return badRequest(ctx, "Invalid settlement data: "+err.Error())
	}

	if err := s.settleMerchantHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: settlementID.String()})
}

// CreateCourier handles POST /api/v1/couriers - registers a new courier.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var req CreateCourierRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewCreateCourierCommand(req.Name, req.Phone)
	if err != nil {
		return badRequest(ctx, "Invalid courier data: "+err.Error())
	}

	if err := s.createCourierHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: cmd.CourierID().String()})
}

// GetCouriers handles GET /api/v1/couriers - retrieves all couriers.
func (s *Server) GetCouriers(ctx echo.Context) error {
	query := queries.NewGetAllCouriersQuery()

	couriers, err := s.getAllCouriersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]CourierResponse, len(couriers))
	for i, courier := range couriers {
		response[i] = CourierResponse{
			ID:     courier.ID.String(),
			Name:   courier.Name,
			Phone:  courier.Phone,
			Active: courier.Active,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetAvailableOrders handles GET /api/v1/orders/available - lists orders a
// courier can claim, oldest first.
func (s *Server) GetAvailableOrders(ctx echo.Context) error {
	query := queries.NewGetAvailableOrdersQuery()

	orders, err := s.getAvailableOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]AvailableOrderResponse, len(orders))
	for i, o := range orders {
		response[i] = AvailableOrderResponse{
			ID:         o.ID.String(),
			StoreID:    o.StoreID.String(),
			Status:     o.Status.String(),
			OrderTotal: o.OrderTotal,
			PlacedAt:   o.PlacedAt.Format(timeFormat),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/:orderId - returns the full order view.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("orderId"))
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order ID: "+err.Error())
	}

	o, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	timeline := make([]TimelineEventResponse, len(o.Timeline))
	for i, ev := range o.Timeline {
		timeline[i] = TimelineEventResponse{
			From:       ev.From.String(),
			To:         ev.To.String(),
			Actor:      ev.Actor.String(),
			OccurredAt: ev.OccurredAt.Format(timeFormat),
		}
	}

	response := OrderResponse{
		ID:         o.ID.String(),
		StoreID:    o.StoreID.String(),
		CustomerID: o.CustomerID.String(),
		Status:     o.Status.String(),
		Snapshot:   o.Snapshot,
		PlacedAt:   o.PlacedAt.Format(timeFormat),
		UpdatedAt:  o.UpdatedAt.Format(timeFormat),
		Timeline:   timeline,
	}
	if o.CourierID != nil {
		courierID := o.CourierID.String()
		response.CourierID = &courierID
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetAccountBalance handles GET /api/v1/accounts/:account/balance - returns
// the debit-normal balance of a single ledger account.
func (s *Server) GetAccountBalance(ctx echo.Context) error {
	query, err := queries.NewGetAccountBalanceQuery(ledger.AccountCode(ctx.Param("account")))
	if err != nil {
		return badRequest(ctx, "Invalid account code: "+err.Error())
	}

	balance, err := s.getAccountBalanceHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, AccountBalanceResponse{
		Account: string(balance.Account),
		Balance: balance.Balance,
	})
}

// GetTrialBalance handles GET /api/v1/accounts/trial-balance - returns the
// per-account balances and their sum, which is zero when the books are sound.
func (s *Server) GetTrialBalance(ctx echo.Context) error {
	query := queries.NewGetTrialBalanceQuery()

	report, err := s.getTrialBalanceHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	accounts := make([]TrialBalanceLine, len(report.Accounts))
	for i, line := range report.Accounts {
		accounts[i] = TrialBalanceLine{
			Account: string(line.Account),
			Balance: line.Balance,
		}
	}

	return ctx.JSON(http.StatusOK, TrialBalanceResponse{
		Accounts: accounts,
		Total:    report.Total,
	})
}

// timeFormat is RFC 3339 with sub-second precision dropped.
const timeFormat = "2006-01-02T15:04:05Z07:00"

// badRequest renders a 400 with the given message.
func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// domainError maps use case errors to HTTP status codes: missing aggregates
// to 404, lost races and stale updates to 409, rejected values and illegal
// transitions to 400, everything else to 500.
func domainError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, Error{
		Code:    code,
		Message: err.Error(),
	})
}
