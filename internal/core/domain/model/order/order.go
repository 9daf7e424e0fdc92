package order

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder factory method. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrCancelReasonIsRequired is returned when cancelling without a reason.
	ErrCancelReasonIsRequired = errs.NewValueIsRequiredError("cancel reason")
)

// Order represents a delivery order in the system. It is the aggregate root that
// manages the order lifecycle from creation through dispatch, assignment, and
// completion or cancellation.
//
// Order follows these invariants:
//   - Must have a valid unique identifier, tracking number, and owning partner
//   - Pickup and dropoff are valid WGS84 coordinates
//   - Payout must be positive
//   - At most one non-terminal assignment exists at a time
//   - assignedAt/pickedUpAt/deliveredAt are monotonically non-decreasing when present
//   - Status transitions follow the lifecycle transition table
//   - Can only be created through NewOrder or restored through RestoreOrder
//
// The agent-facing transitions (MarkPickedUp, StartDelivery, MarkDelivered) take
// the acting agent's id and fail with a ForbiddenError when the actor is not the
// assigned agent, so authorization of the "assigned agent only" rules lives with
// the invariant it protects.
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	// trackingNumber is the human-readable tracking reference
	trackingNumber string

	// partnerID identifies the partner that owns the order
	partnerID kernel.UUID

	// agentID is the assigned agent's ID (nil while unassigned)
	agentID *kernel.UUID

	// pickup and dropoff are the delivery endpoints
	pickup  kernel.GeoPoint
	dropoff kernel.GeoPoint

	// payout is the amount the order pays on delivery
	payout kernel.Money

	// priority orders dispatch within a tick
	priority Priority

	// estimatedDurationMins is the expected delivery time in minutes (0 = unset)
	estimatedDurationMins int

	// status is the current state in the order lifecycle
	status Status

	// delayed is the overlay condition raised by the delay monitor
	delayed bool

	// dispatchAttempts counts dispatch ticks that found no agent
	dispatchAttempts int

	createdAt    time.Time
	assignedAt   *time.Time
	pickedUpAt   *time.Time
	deliveredAt  *time.Time
	cancelledAt  *time.Time
	cancelReason string

	// isConstructed ensures the order was created via NewOrder
	isConstructed bool
}

// NewOrder creates a new Order in SearchingAgent status with validation.
// This is the only way to create a valid Order; RestoreOrder exists for
// rehydrating persisted aggregates.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - trackingNumber: human-readable tracking reference (must be non-empty)
//   - partnerID: owning partner (must be a valid UUID)
//   - pickup, dropoff: validated WGS84 coordinates
//   - payout: order payout (must be positive)
//   - priority: dispatch priority
//   - estimatedDurationMins: expected delivery time in minutes, 0 when unknown
//   - createdAt: creation timestamp
//
// Returns:
//   - *Order: the created order if all validations pass
//   - error: validation error if any parameter is invalid
func NewOrder(
	id kernel.UUID,
	trackingNumber string,
	partnerID kernel.UUID,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	payout kernel.Money,
	priority Priority,
	estimatedDurationMins int,
	createdAt time.Time,
) (*Order, error) {
	order := &Order{
		status:        SearchingAgent,
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		order.setID(id),
		order.setTrackingNumber(trackingNumber),
		order.setPartnerID(partnerID),
		order.setPickup(pickup),
		order.setDropoff(dropoff),
		order.setPayout(payout),
		order.setPriority(priority),
		order.setEstimatedDuration(estimatedDurationMins),
	); err != nil {
		return nil, err
	}

	return order, nil
}

// RestoreOrder rehydrates an Order from persistence without replaying its
// lifecycle. The status/agent combination is validated for consistency:
// a searching order must not carry an agent, an in-flight or delivered order
// must.
func RestoreOrder(
	id kernel.UUID,
	trackingNumber string,
	partnerID kernel.UUID,
	agentID *kernel.UUID,
	pickup kernel.GeoPoint,
	dropoff kernel.GeoPoint,
	payout kernel.Money,
	priority Priority,
	estimatedDurationMins int,
	status Status,
	delayed bool,
	dispatchAttempts int,
	createdAt time.Time,
	assignedAt, pickedUpAt, deliveredAt, cancelledAt *time.Time,
	cancelReason string,
) (*Order, error) {
	order, err := NewOrder(id, trackingNumber, partnerID, pickup, dropoff,
		payout, priority, estimatedDurationMins, createdAt)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if err = validateAgentConsistency(status, agentID != nil); err != nil {
		return nil, err
	}

	order.status = status
	order.agentID = agentID
	order.delayed = delayed
	order.dispatchAttempts = dispatchAttempts
	order.assignedAt = assignedAt
	order.pickedUpAt = pickedUpAt
	order.deliveredAt = deliveredAt
	order.cancelledAt = cancelledAt
	order.cancelReason = cancelReason
	return order, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// TrackingNumber returns the human-readable tracking reference.
func (o *Order) TrackingNumber() string {
	return o.trackingNumber
}

// Partner returns the owning partner's ID.
func (o *Order) Partner() kernel.UUID {
	return o.partnerID
}

// Agent returns the assigned agent's ID, or nil while unassigned.
func (o *Order) Agent() *kernel.UUID {
	return o.agentID
}

// Pickup returns the pickup coordinate.
func (o *Order) Pickup() kernel.GeoPoint {
	return o.pickup
}

// Dropoff returns the dropoff coordinate.
func (o *Order) Dropoff() kernel.GeoPoint {
	return o.dropoff
}

// Payout returns the order payout amount.
func (o *Order) Payout() kernel.Money {
	return o.payout
}

// Priority returns the dispatch priority.
func (o *Order) Priority() Priority {
	return o.priority
}

// EstimatedDurationMins returns the expected delivery time in minutes,
// 0 when unset.
func (o *Order) EstimatedDurationMins() int {
	return o.estimatedDurationMins
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// IsDelayed reports whether the delay monitor flagged the order.
func (o *Order) IsDelayed() bool {
	return o.delayed
}

// DispatchAttempts returns the count of dispatch ticks spent searching.
func (o *Order) DispatchAttempts() int {
	return o.dispatchAttempts
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// AssignedAt returns when the order was assigned, nil while unassigned.
func (o *Order) AssignedAt() *time.Time {
	return o.assignedAt
}

// PickedUpAt returns when the package was collected, nil before pickup.
func (o *Order) PickedUpAt() *time.Time {
	return o.pickedUpAt
}

// DeliveredAt returns when the order was delivered, nil before delivery.
func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

// CancelledAt returns when the order was cancelled, nil unless cancelled.
func (o *Order) CancelledAt() *time.Time {
	return o.cancelledAt
}

// CancelReason returns the mandatory reason recorded on cancellation.
func (o *Order) CancelReason() string {
	return o.cancelReason
}

// Assign commits the order to an agent. Only legal from SearchingAgent; the
// dispatch engine is the sole caller, racing accepts are arbitrated by the
// store's conditional update, not here.
//
// Sets status to Assigned and records assignedAt.
func (o *Order) Assign(agentID kernel.UUID, at time.Time) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(Assigned)
	if err != nil {
		return err
	}

	at = at.UTC()
	o.status = newStatus
	o.agentID = &agentID
	o.assignedAt = &at
	return nil
}

// MarkPickedUp records that the assigned agent collected the package.
// Only the assigned agent may perform this transition; pickedUpAt must not
// precede assignedAt.
func (o *Order) MarkPickedUp(by kernel.UUID, at time.Time) error {
	if err := o.requireAssignedAgent(by, "pick up order"); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(PickedUp)
	if err != nil {
		return err
	}

	at = at.UTC()
	if o.assignedAt != nil && at.Before(*o.assignedAt) {
		return errs.NewValueIsInvalidErrorWithCause("pickedUpAt",
			fmt.Errorf("%s precedes assignedAt %s", at, *o.assignedAt))
	}

	o.status = newStatus
	o.pickedUpAt = &at
	return nil
}

// StartDelivery records that the assigned agent is en route to the dropoff.
// Only the assigned agent may perform this transition.
func (o *Order) StartDelivery(by kernel.UUID) error {
	if err := o.requireAssignedAgent(by, "start delivery"); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(OutForDelivery)
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// MarkDelivered completes the order. Only the assigned agent may perform this
// transition; deliveredAt must not precede pickedUpAt. The caller posts the
// ledger earning in the same transaction.
func (o *Order) MarkDelivered(by kernel.UUID, at time.Time) error {
	if err := o.requireAssignedAgent(by, "deliver order"); err != nil {
		return err
	}

	newStatus, err := o.status.TransitionTo(Delivered)
	if err != nil {
		return err
	}

	at = at.UTC()
	if o.pickedUpAt != nil && at.Before(*o.pickedUpAt) {
		return errs.NewValueIsInvalidErrorWithCause("deliveredAt",
			fmt.Errorf("%s precedes pickedUpAt %s", at, *o.pickedUpAt))
	}

	o.status = newStatus
	o.deliveredAt = &at
	return nil
}

// Cancel moves the order to the terminal Cancelled status with a mandatory
// reason. Legal from any non-terminal status. The assigned agent, if any,
// stays on the record for auditing; releasing the agent is the caller's job.
func (o *Order) Cancel(reason string, at time.Time) error {
	if reason == "" {
		return ErrCancelReasonIsRequired
	}

	newStatus, err := o.status.TransitionTo(Cancelled)
	if err != nil {
		return err
	}

	at = at.UTC()
	o.status = newStatus
	o.cancelReason = reason
	o.cancelledAt = &at
	return nil
}

// Requeue resets an Assigned order back to SearchingAgent for admin
// reassignment. Clears the agent, assignedAt, the delayed flag, and the
// dispatch attempt counter so the search starts fresh.
func (o *Order) Requeue() error {
	newStatus, err := o.status.TransitionTo(SearchingAgent)
	if err != nil {
		return err
	}

	o.status = newStatus
	o.agentID = nil
	o.assignedAt = nil
	o.delayed = false
	o.dispatchAttempts = 0
	return nil
}

// MarkDelayed raises the delayed condition on an in-flight order.
//
// Returns:
//   - (true, nil) when the flag was newly raised
//   - (false, nil) when the order was already delayed (idempotent no-op)
//   - (false, error) when the order is not in an auditable status
func (o *Order) MarkDelayed() (bool, error) {
	if !o.status.IsActive() {
		return false, errs.NewInvalidTransitionErrorWithCause(
			o.status.String(), "DELAYED",
			errors.New("delay applies only to in-flight orders"))
	}
	if o.delayed {
		return false, nil
	}

	o.delayed = true
	return true, nil
}

// RecordDispatchAttempt increments and returns the dispatch attempt counter.
// The engine uses the count for radius backoff and retry bounding.
func (o *Order) RecordDispatchAttempt() int {
	o.dispatchAttempts++
	return o.dispatchAttempts
}

func (o *Order) requireAssignedAgent(by kernel.UUID, action string) error {
	if err := by.Validate(); err != nil {
		return err
	}
	if o.agentID == nil || !o.agentID.IsEqual(by) {
		return errs.NewForbiddenErrorWithCause(action,
			errors.New("actor is not the assigned agent"))
	}
	return nil
}

func validateAgentConsistency(status Status, hasAgent bool) error {
	switch {
	case status == SearchingAgent && hasAgent:
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s order must not have an agent", status))
	case status.IsActive() && !hasAgent, status == Delivered && !hasAgent:
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s order must have an agent", status))
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTrackingNumber(trackingNumber string) error {
	if trackingNumber == "" {
		return errs.NewValueIsRequiredError("tracking number")
	}
	o.trackingNumber = trackingNumber
	return nil
}

func (o *Order) setPartnerID(partnerID kernel.UUID) error {
	if err := partnerID.Validate(); err != nil {
		return err
	}
	o.partnerID = partnerID
	return nil
}

func (o *Order) setPickup(pickup kernel.GeoPoint) error {
	if err := pickup.Validate(); err != nil {
		return err
	}
	o.pickup = pickup
	return nil
}

func (o *Order) setDropoff(dropoff kernel.GeoPoint) error {
	if err := dropoff.Validate(); err != nil {
		return err
	}
	o.dropoff = dropoff
	return nil
}

func (o *Order) setPayout(payout kernel.Money) error {
	if payout <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("payout",
			fmt.Errorf("%s is not greater than 0", payout))
	}
	o.payout = payout
	return nil
}

func (o *Order) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	o.priority = priority
	return nil
}

func (o *Order) setEstimatedDuration(minutes int) error {
	if minutes < 0 {
		return errs.NewValueIsInvalidErrorWithCause("estimated duration",
			fmt.Errorf("%d is negative", minutes))
	}
	o.estimatedDurationMins = minutes
	return nil
}
