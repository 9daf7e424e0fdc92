// Package agent provides domain entities and business logic for delivery
// agents in the dispatch core. It implements the Agent aggregate root with
// presence management and acceptance statistics.
//
// The package includes:
//   - Agent: the aggregate root managing identity, presence, and location
//   - Presence: a small state machine (Offline -> Online -> OnTrip)
//
// Key business rules:
//   - An agent can hold at most one active order at a time (OnTrip gates accepts)
//   - Only approved agents receive offers
//   - Location reports carry an observation timestamp; stale reports are
//     rejected by the geo index, not here
package agent
