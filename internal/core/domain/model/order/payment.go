package order

import (
	"fmt"
	"time"

	"marketplace/internal/pkg/errs"
)

// PaymentResult is the opaque record the payment gateway returns on settlement.
type PaymentResult struct {
	transactionID string
	status        string
	settledAt     time.Time
}

// NewPaymentResult validates a gateway record. All three fields are required.
func NewPaymentResult(transactionID, status string, settledAt time.Time) (PaymentResult, error) {
	if transactionID == "" {
		return PaymentResult{}, errs.NewValueIsRequiredError("transaction id")
	}
	if status == "" {
		return PaymentResult{}, errs.NewValueIsRequiredError("payment status")
	}
	if settledAt.IsZero() {
		return PaymentResult{}, errs.NewValueIsRequiredError("settled at")
	}
	return PaymentResult{transactionID: transactionID, status: status, settledAt: settledAt}, nil
}

// SimulatedPaymentResult builds the record the simulated gateway produces at settledAt.
func SimulatedPaymentResult(settledAt time.Time) PaymentResult {
	return PaymentResult{
		transactionID: fmt.Sprintf("dummy_txn_%d", settledAt.UnixMilli()),
		status:        "succeeded",
		settledAt:     settledAt,
	}
}

// TransactionID returns the gateway's reference for the charge.
//
// Example:
//
//	r := order.SimulatedPaymentResult(time.UnixMilli(1740823202000))
//	r.TransactionID() // "dummy_txn_1740823202000"
func (p PaymentResult) TransactionID() string {
	return p.transactionID
}

// Status returns the gateway status, "succeeded" for the simulated gateway.
func (p PaymentResult) Status() string {
	return p.status
}

// SettledAt returns when the charge went through. It is also the order's PaidAt.
func (p PaymentResult) SettledAt() time.Time {
	return p.settledAt
}
