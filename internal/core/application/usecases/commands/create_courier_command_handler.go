package commands

import (
	"context"

	"marketplace/internal/core/domain/model/courier"
)

// CreateCourierCommandHandler handles the business logic for courier
// registration. Creates and persists new courier entities.
type CreateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
}

// NewCreateCourierCommandHandler creates a handler for courier registration.
// Requires a CourierUoWFactory for transactional persistence operations.
func NewCreateCourierCommandHandler(uowFactory CourierUoWFactory) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the courier creation command.
// Creates a new courier entity and persists it within a transaction.
func (h *CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierEntity, err := courier.NewCourier(cmd.CourierID(), cmd.Name(), cmd.Phone())
	if err != nil {
		return err
	}

	if err = uow.CourierRepository().Add(ctx, courierEntity); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
