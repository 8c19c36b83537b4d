// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
// This package implements the repository pattern for the courier domain aggregate, handling
// the conversion between domain entities and database representations.
package courierrepo

import (
	"marketplace/internal/core/domain/model/courier"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
// The activity flag is indexed because the claim path filters on it for
// every claim attempt.
type CourierDTO struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string    `gorm:"type:varchar(255);not null"`
	Phone  string    `gorm:"type:varchar(32);not null"`
	Active bool      `gorm:"not null;index"`
}

// TableName specifies the database table name for courier entities.
// Overrides GORM's default naming convention to use "couriers" instead of "courier_dtos".
func (CourierDTO) TableName() string {
	return "couriers"
}

// fromDomain converts a courier domain aggregate to its database representation.
func fromDomain(courier *courier.Courier) CourierDTO {
	return CourierDTO{
		ID:     courier.ID().Bytes(),
		Name:   courier.Name(),
		Phone:  courier.Phone(),
		Active: courier.IsActive(),
	}
}

// toDomain converts a database DTO to a courier domain aggregate.
// Reconstructs the aggregate with its persisted activity state using RestoreCourier.
func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return courier.RestoreCourier(id, dto.Name, dto.Phone, dto.Active)
}
