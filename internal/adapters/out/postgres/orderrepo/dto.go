// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Maps order domain entities to relational database tables with proper indexing
// for efficient querying by status and agent assignment.
type OrderDTO struct {
	ID                    uuid.UUID   `gorm:"type:uuid;primaryKey"`
	TrackingNumber        string      `gorm:"type:varchar(64);not null;uniqueIndex"`
	PartnerID             uuid.UUID   `gorm:"type:uuid;not null;index"`
	AgentID               *uuid.UUID  `gorm:"type:uuid;index"`
	Pickup                GeoPointDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	Dropoff               GeoPointDTO `gorm:"embedded;embeddedPrefix:dropoff_"`
	PayoutCents           int64       `gorm:"not null"`
	Priority              int         `gorm:"not null"`
	EstimatedDurationMins int         `gorm:"not null"`
	Status                int         `gorm:"not null;index"`
	Delayed               bool        `gorm:"not null"`
	DispatchAttempts      int         `gorm:"not null"`
	CreatedAt             time.Time   `gorm:"not null"`
	AssignedAt            *time.Time  `gorm:"index"`
	PickedUpAt            *time.Time
	DeliveredAt           *time.Time
	CancelledAt           *time.Time
	CancelReason          string `gorm:"type:varchar(255)"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// GeoPointDTO represents embedded geographic coordinates within the order table.
// Stores pickup and dropoff positions as plain doubles.
type GeoPointDTO struct {
	Lat float64 `gorm:"type:double precision;not null"`
	Lng float64 `gorm:"type:double precision;not null"`
}

// fromDomain converts an order domain aggregate to its database representation.
// Maps all order attributes including optional agent assignment and lifecycle timestamps.
func fromDomain(order *order.Order) OrderDTO {
	var agentID *uuid.UUID
	if id := order.Agent(); id != nil {
		raw := id.Bytes()
		agentID = &raw
	}

	return OrderDTO{
		ID:             order.ID().Bytes(),
		TrackingNumber: order.TrackingNumber(),
		PartnerID:      order.Partner().Bytes(),
		AgentID:        agentID,
		Pickup: GeoPointDTO{
			Lat: order.Pickup().Lat(),
			Lng: order.Pickup().Lng(),
		},
		Dropoff: GeoPointDTO{
			Lat: order.Dropoff().Lat(),
			Lng: order.Dropoff().Lng(),
		},
		PayoutCents:           order.Payout().Cents(),
		Priority:              int(order.Priority()),
		EstimatedDurationMins: order.EstimatedDurationMins(),
		Status:                int(order.Status()),
		Delayed:               order.IsDelayed(),
		DispatchAttempts:      order.DispatchAttempts(),
		CreatedAt:             order.CreatedAt(),
		AssignedAt:            order.AssignedAt(),
		PickedUpAt:            order.PickedUpAt(),
		DeliveredAt:           order.DeliveredAt(),
		CancelledAt:           order.CancelledAt(),
		CancelReason:          order.CancelReason(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including status and agent assignment using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	partnerID, err := kernel.UUIDFromBytes(dto.PartnerID[:])
	if err != nil {
		return nil, err
	}

	var agentID *kernel.UUID
	if dto.AgentID != nil {
		aID, agentErr := kernel.UUIDFromBytes((*dto.AgentID)[:])
		if agentErr != nil {
			return nil, agentErr
		}

		agentID = &aID
	}

	pickup, err := kernel.NewGeoPoint(dto.Pickup.Lat, dto.Pickup.Lng)
	if err != nil {
		return nil, err
	}

	dropoff, err := kernel.NewGeoPoint(dto.Dropoff.Lat, dto.Dropoff.Lng)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		dto.TrackingNumber,
		partnerID,
		agentID,
		pickup,
		dropoff,
		kernel.Money(dto.PayoutCents),
		order.Priority(dto.Priority),
		dto.EstimatedDurationMins,
		order.Status(dto.Status),
		dto.Delayed,
		dto.DispatchAttempts,
		dto.CreatedAt,
		dto.AssignedAt,
		dto.PickedUpAt,
		dto.DeliveredAt,
		dto.CancelledAt,
		dto.CancelReason,
	)
}

// toDomainSlice converts a batch of DTOs, failing on the first broken row.
func toDomainSlice(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
