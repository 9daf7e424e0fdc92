// Package order provides domain entities and business logic for order
// lifecycle management in the dispatch core. It implements the Order aggregate
// root with a strict status state machine.
//
// The package includes:
//   - Order: the aggregate root managing identity, assignment, and timestamps
//   - Status: a closed state machine enforcing the lifecycle transition table
//   - Priority: the dispatch priority enum
//
// Key business rules:
//   - Orders carry validated WGS84 pickup/dropoff coordinates and a positive payout
//   - Status follows SearchingAgent -> Assigned -> PickedUp -> OutForDelivery -> Delivered
//   - Cancelled is reachable from any non-terminal status with a mandatory reason
//   - At most one non-terminal assignment exists at a time
//   - assignedAt/pickedUpAt/deliveredAt are monotonically non-decreasing
//   - The delayed condition is an overlay flag, never a distinct status
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
