// Package agentrepo provides data transfer objects and mapping functions for agent persistence.
// This package implements the repository pattern for the agent domain aggregate, handling
// the conversion between domain entities and database representations.
package agentrepo

import (
	"time"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AgentDTO represents the database structure for persisting agent aggregates.
// The last known location is stored inline; the live geo index is rebuilt from
// location reports, not from this table.
type AgentDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Presence       int       `gorm:"not null;index"`
	Approved       bool      `gorm:"not null"`
	LocationLat    *float64  `gorm:"type:double precision"`
	LocationLng    *float64  `gorm:"type:double precision"`
	LocationAt     *time.Time
	OffersReceived int `gorm:"not null"`
	OffersAccepted int `gorm:"not null"`
}

// TableName specifies the database table name for agent entities.
// Overrides GORM's default naming convention to use "agents".
func (AgentDTO) TableName() string {
	return "agents"
}

// fromDomain converts an agent domain aggregate to its database representation.
func fromDomain(agent *agent.Agent) AgentDTO {
	dto := AgentDTO{
		ID:             agent.ID().Bytes(),
		UserID:         agent.UserID().Bytes(),
		Presence:       int(agent.Presence()),
		Approved:       agent.IsApproved(),
		LocationAt:     agent.LocationAt(),
		OffersReceived: agent.OffersReceived(),
		OffersAccepted: agent.OffersAccepted(),
	}

	if loc := agent.Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.LocationLat = &lat
		dto.LocationLng = &lng
	}

	return dto
}

// toDomain converts a database DTO to an agent domain aggregate using RestoreAgent.
func toDomain(dto AgentDTO) (*agent.Agent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	userID, err := kernel.UUIDFromBytes(dto.UserID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.LocationLat != nil && dto.LocationLng != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.LocationLat, *dto.LocationLng)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &point
	}

	return agent.RestoreAgent(
		id,
		userID,
		agent.Presence(dto.Presence),
		dto.Approved,
		location,
		dto.LocationAt,
		dto.OffersReceived,
		dto.OffersAccepted,
	)
}
