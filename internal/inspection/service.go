// Package inspection books the follow-up inspection appointment once payment
// has been verified.
package inspection

import (
	"context"

	"github.com/carvalueai/client-go/internal/api"
	"github.com/carvalueai/client-go/internal/valuation"
	"github.com/carvalueai/client-go/pkg/logging"
)

// BookingConfirmation is the payload of a successful POST /book-inspection.
type BookingConfirmation struct {
	BookingID string `json:"booking_id"`
	// Date is the inspection date that was submitted, echoed for display.
	Date string `json:"-"`
}

// Service books inspections against verified orders.
type Service struct {
	client   *api.Client
	timeSlot string
	logger   *logging.Logger
}

// NewService creates a booking service. timeSlot is the fixed slot submitted
// with every booking; scheduling by slot is handled offline by the operations
// team.
func NewService(client *api.Client, timeSlot string, logger *logging.Logger) *Service {
	if timeSlot == "" {
		timeSlot = "10:00 AM"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, timeSlot: timeSlot, logger: logger}
}

type bookingRequest struct {
	CarID          string `json:"car_id"`
	OrderID        string `json:"order_id"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	CustomerPhone  string `json:"customer_phone"`
	Address        string `json:"address"`
	InspectionDate string `json:"inspection_date"`
	InspectionTime string `json:"inspection_time"`
}

// Book submits the inspection booking for a verified order.
func (s *Service) Book(ctx context.Context, carID, orderID string, customer valuation.CustomerAttributes) (*BookingConfirmation, error) {
	req := bookingRequest{
		CarID:          carID,
		OrderID:        orderID,
		CustomerName:   customer.Name,
		CustomerEmail:  customer.Email,
		CustomerPhone:  customer.Phone,
		Address:        customer.Address,
		InspectionDate: customer.InspectionDate,
		InspectionTime: s.timeSlot,
	}

	var confirmation BookingConfirmation
	if err := s.client.PostJSON(ctx, "/book-inspection", req, &confirmation); err != nil {
		return nil, err
	}
	confirmation.Date = customer.InspectionDate

	s.logger.Info("inspection booked", "booking_id", confirmation.BookingID, "order_id", orderID, "date", confirmation.Date)
	return &confirmation, nil
}
