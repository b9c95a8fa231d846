package order

import (
	"fmt"

	"marketplace/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	PendingApproval ──┬──> PendingPayment ──> Processing ──> OutForDelivery ──> Delivered
//	                  └──> Rejected                │                             ▲
//	                                               └─────────────────────────────┘
//
// Rejected and Delivered are terminal for every role except admin.
type Status int

const (
	// Unknown catches uninitialized Status values.
	Unknown Status = iota

	// PendingApproval is the status of a freshly checked-out order waiting for the shopkeeper.
	PendingApproval

	// PendingPayment means the shop accepted the order and the customer may pay.
	PendingPayment

	// Rejected means the shop declined the order.
	Rejected

	// Processing means the order is paid. It stays Processing after an agent claims it.
	Processing

	// OutForDelivery means the assigned agent picked the order up.
	OutForDelivery

	// Delivered is the final state.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "UNKNOWN",
		PendingApproval: "PENDING_APPROVAL",
		PendingPayment:  "PENDING_PAYMENT",
		Rejected:        "REJECTED",
		Processing:      "PROCESSING",
		OutForDelivery:  "OUT_FOR_DELIVERY",
		Delivered:       "DELIVERED",
	}
}

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{PendingApproval, PendingPayment, Rejected, Processing, OutForDelivery, Delivered}
}

// ParseStatus maps a wire name such as "OUT_FOR_DELIVERY" to a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses() {
		if st.String() == s {
			return st, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that s is one of AllStatuses.
func (s Status) Validate() error {
	if s < PendingApproval || s > Delivered {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name, such as "PENDING_PAYMENT", or "UNKNOWN".
//
// Example:
//
//	order.OutForDelivery.String() // "OUT_FOR_DELIVERY"
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no non-admin transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Rejected || s == Delivered
}

// IsActiveDelivery reports whether an agent holding an order in s is busy with it.
func (s Status) IsActiveDelivery() bool {
	return s == Processing || s == OutForDelivery
}

// allowsAgent reports whether an order in s may carry a delivery agent.
func (s Status) allowsAgent() bool {
	return s == Processing || s == OutForDelivery || s == Delivered
}

// requiresAgent reports whether an order in s must carry a delivery agent.
func (s Status) requiresAgent() bool {
	return s == OutForDelivery || s == Delivered
}

// ValidateCanHaveAgent checks the consistency between status and agent assignment:
//   - PendingApproval, PendingPayment and Rejected orders must not have an agent
//   - OutForDelivery and Delivered orders must have an agent
//   - Processing orders may have one (after a claim) or not (before)
func (s Status) ValidateCanHaveAgent(hasAgent bool) error {
	if hasAgent && !s.allowsAgent() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a delivery agent", s),
		)
	}

	if !hasAgent && s.requiresAgent() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no delivery agent", s),
		)
	}

	return nil
}
