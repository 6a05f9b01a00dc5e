package checkout

import (
	"context"

	"github.com/carvalueai/client-go/internal/api"
	"github.com/carvalueai/client-go/internal/valuation"
	"github.com/carvalueai/client-go/pkg/logging"
)

// Service creates payment orders and verifies completed payments.
type Service struct {
	client   *api.Client
	feePaise int
	logger   *logging.Logger
}

// NewService creates a checkout service. feePaise is the fixed inspection fee
// charged for every order; it is not derived from the predicted price.
func NewService(client *api.Client, feePaise int, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, feePaise: feePaise, logger: logger}
}

type createOrderRequest struct {
	Amount        int    `json:"amount"`
	CarID         string `json:"car_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

// CreateOrder issues one authenticated POST to create a payment order for the
// fixed inspection fee.
func (s *Service) CreateOrder(ctx context.Context, carID string, customer valuation.CustomerAttributes) (*OrderContext, error) {
	req := createOrderRequest{
		Amount:        s.feePaise,
		CarID:         carID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
	}

	var order OrderContext
	if err := s.client.PostJSON(ctx, "/create-order", req, &order); err != nil {
		return nil, err
	}

	s.logger.Info("payment order created", "order_id", order.OrderID, "amount", order.Amount, "currency", order.Currency)
	return &order, nil
}

type verifyRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// VerifyPayment forwards the three opaque provider fields to the backend for
// signature verification. Verification failures are never retried here;
// blindly retrying a failed signature check is not safe.
func (s *Service) VerifyPayment(ctx context.Context, result PaymentResult) error {
	req := verifyRequest{
		OrderID:   result.OrderID,
		PaymentID: result.PaymentID,
		Signature: result.Signature,
	}

	if err := s.client.PostJSON(ctx, "/verify-payment", req, nil); err != nil {
		return err
	}

	s.logger.Info("payment verified", "order_id", result.OrderID, "payment_id", result.PaymentID)
	return nil
}
