package valuation

import (
	"context"

	"github.com/carvalueai/client-go/internal/api"
	"github.com/carvalueai/client-go/pkg/logging"
)

// PredictionResult is the payload of a successful POST /predict. CarID is the
// identifier the rest of the workflow threads through order creation and
// booking; the price is display-only after this point.
type PredictionResult struct {
	CarID          string  `json:"car_id"`
	PredictedPrice float64 `json:"predicted_price"`
}

// Service submits car attributes for price prediction.
type Service struct {
	client *api.Client
	logger *logging.Logger
}

// NewService creates a prediction service.
func NewService(client *api.Client, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, logger: logger}
}

// Predict validates the prediction form and issues one authenticated call.
// A blank required field aborts before any network traffic with a
// *ValidationError naming the field.
func (s *Service) Predict(ctx context.Context, snapshot FormSnapshot) (*PredictionResult, error) {
	if verr := ValidateCarSnapshot(snapshot); verr != nil {
		s.logger.Debug("prediction form validation failed", "field", verr.Field)
		return nil, verr
	}

	car := CarFromSnapshot(snapshot)
	s.logger.Debug("requesting prediction", "name", car.Name, "year", car.Year)

	var result PredictionResult
	if err := s.client.PostJSON(ctx, "/predict", car, &result); err != nil {
		return nil, err
	}

	s.logger.Info("prediction received", "car_id", result.CarID, "predicted_price", result.PredictedPrice)
	return &result, nil
}
