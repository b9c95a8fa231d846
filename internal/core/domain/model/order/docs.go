// Package order implements the Order aggregate and its lifecycle state machine.
//
// The package includes:
//   - Order: the aggregate root created at checkout and mutated by role-scoped transitions
//   - Item: an immutable snapshot of a purchased product line
//   - Status: the lifecycle states and their agent rules
//   - Transitions: the (role, requested status) dispatch table with each rule's guard
//
// Lifecycle:
//
//	PENDING_APPROVAL ──┬──> PENDING_PAYMENT ──(settlement)──> PROCESSING ──> OUT_FOR_DELIVERY ──> DELIVERED
//	                   └──> REJECTED                              │                                  ▲
//	                                                              └──────────────────────────────────┘
//
// Key business rules:
//   - An order has a delivery agent iff it is PROCESSING after a claim, OUT_FOR_DELIVERY or DELIVERED
//   - Items and total are fixed at creation; the total is computed here, never supplied
//   - Orders are never deleted
//   - Admins may force any status but never break the agent rule above
package order
