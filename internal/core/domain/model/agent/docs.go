// Package agent provides the delivery Agent aggregate.
//
// An agent is described by two flags:
//   - isOnline: the agent is working and may be offered orders
//   - isAvailable: the agent holds no active delivery
//
// Key business rules:
//   - Only an online and available agent may take an order (claim or admin assignment)
//   - Taking an order makes the agent unavailable
//   - The agent becomes available again only when the held order leaves the active states
//   - Both flags change in the same unit of work as the order change that depends on them
//
// The current position is supplied by the location collaborator and only reported back
// by order tracking.
package agent
