package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrPayoutIsInvalid            = errors.New("payout must be greater than 0")
	ErrEstimatedDurationIsInvalid = errors.New("estimated duration must not be negative")
)

// CreateOrderCommand represents a partner's request to create a new delivery
// order. Encapsulates the pickup and dropoff points, the payout on offer and
// the dispatch priority.
//
// Example:
//
//	orderID := kernel.NewUUID()
//	cmd, err := NewCreateOrderCommand(orderID, partnerID, pickup, dropoff, payout, order.PriorityNormal, 30)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory, webhooks)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID               kernel.UUID
	partnerID             kernel.UUID
	pickup                kernel.GeoPoint
	dropoff               kernel.GeoPoint
	payout                kernel.Money
	priority              order.Priority
	estimatedDurationMins int

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new delivery order.
// The points must be valid coordinates, the payout positive and the priority
// a known value. estimatedDurationMins may be 0 when the partner has no
// estimate.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	partnerID kernel.UUID,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	payout kernel.Money,
	priority order.Priority,
	estimatedDurationMins int,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setPartnerID(partnerID),
		orderCommand.setPickup(pickup),
		orderCommand.setDropoff(dropoff),
		orderCommand.setPayout(payout),
		orderCommand.setPriority(priority),
		orderCommand.setEstimatedDuration(estimatedDurationMins),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// PartnerID returns the owning partner's id.
func (c CreateOrderCommand) PartnerID() kernel.UUID {
	return c.partnerID
}

// Pickup returns the pickup coordinate.
func (c CreateOrderCommand) Pickup() kernel.GeoPoint {
	return c.pickup
}

// Dropoff returns the dropoff coordinate.
func (c CreateOrderCommand) Dropoff() kernel.GeoPoint {
	return c.dropoff
}

// Payout returns the payout the order pays on delivery.
func (c CreateOrderCommand) Payout() kernel.Money {
	return c.payout
}

// Priority returns the dispatch priority.
func (c CreateOrderCommand) Priority() order.Priority {
	return c.priority
}

// EstimatedDurationMins returns the expected delivery time in minutes,
// 0 when the partner gave no estimate.
func (c CreateOrderCommand) EstimatedDurationMins() int {
	return c.estimatedDurationMins
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setPartnerID(partnerID kernel.UUID) error {
	if err := partnerID.Validate(); err != nil {
		return err
	}

	c.partnerID = partnerID
	return nil
}

func (c *CreateOrderCommand) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}

	c.pickup = pickup
	return nil
}

func (c *CreateOrderCommand) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}

	c.dropoff = dropoff
	return nil
}

func (c *CreateOrderCommand) setPayout(payout kernel.Money) error {
	if payout <= 0 {
		return ErrPayoutIsInvalid
	}

	c.payout = payout
	return nil
}

func (c *CreateOrderCommand) setPriority(priority order.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}

	c.priority = priority
	return nil
}

func (c *CreateOrderCommand) setEstimatedDuration(minutes int) error {
	if minutes < 0 {
		return ErrEstimatedDurationIsInvalid
	}

	c.estimatedDurationMins = minutes
	return nil
}
