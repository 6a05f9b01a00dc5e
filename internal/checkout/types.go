// Package checkout creates payment orders, drives the Razorpay hosted
// checkout, and verifies payments with the backend.
package checkout

import "context"

// OrderContext is the payload of a successful POST /create-order. OrderID is
// required input to verification and booking.
type OrderContext struct {
	OrderID  string `json:"order_id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
}

// PaymentResult carries the three provider-supplied fields. They are opaque
// to this system beyond being forwarded to verification.
type PaymentResult struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// OutcomeKind discriminates the three ways a checkout attempt can end.
type OutcomeKind int

const (
	// OutcomeCompleted means the provider reported a successful payment.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeFailed means the provider reported a payment failure.
	OutcomeFailed
	// OutcomeDismissed means the user closed the checkout without paying.
	OutcomeDismissed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// Outcome is the resolved result of one checkout attempt. Payment is set only
// for OutcomeCompleted; FailureReason only for OutcomeFailed.
type Outcome struct {
	Kind          OutcomeKind
	Payment       *PaymentResult
	FailureReason string
}

// Prefill carries customer contact fields into the checkout form.
type Prefill struct {
	Name    string
	Email   string
	Contact string
}

// Notes are the merchant-visible annotations attached to the payment.
type Notes struct {
	CarID          string
	InspectionDate string
}

// Provider opens a checkout for the given order and suspends until exactly
// one of the three outcomes resolves. Implementations must never drop an
// outcome: completion, failure, and dismissal each surface as a distinct
// variant.
type Provider interface {
	Collect(ctx context.Context, order OrderContext, prefill Prefill, notes Notes) (*Outcome, error)
}
