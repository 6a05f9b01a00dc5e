package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carvalueai/client-go/pkg/logging"
)

// FakeProvider is a dev/demo checkout provider that completes every payment
// without Razorpay credentials.
//
// This MUST be gated by configuration (ALLOW_FAKE_PAYMENTS) and should never
// be enabled in production; the backend will reject its signature anyway
// unless it, too, runs in a test mode.
type FakeProvider struct {
	logger *logging.Logger
}

// NewFakeProvider creates a fake checkout provider.
func NewFakeProvider(logger *logging.Logger) *FakeProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakeProvider{logger: logger}
}

func (p *FakeProvider) Collect(ctx context.Context, order OrderContext, prefill Prefill, notes Notes) (*Outcome, error) {
	_ = ctx
	if order.OrderID == "" {
		return nil, fmt.Errorf("checkout: fake provider requires an order id")
	}
	p.logger.Warn("fake checkout in use, payment not real", "order_id", order.OrderID)
	return &Outcome{
		Kind: OutcomeCompleted,
		Payment: &PaymentResult{
			OrderID:   order.OrderID,
			PaymentID: "fakepay_" + uuid.NewString(),
			Signature: "fakesig_" + uuid.NewString(),
		},
	}, nil
}
