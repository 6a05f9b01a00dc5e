// Package workflow sequences the valuation checkout: predict, create order,
// collect payment, verify, book. One Orchestrator owns the state of one
// workflow run.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carvalueai/client-go/internal/api"
	"github.com/carvalueai/client-go/internal/checkout"
	"github.com/carvalueai/client-go/internal/inspection"
	"github.com/carvalueai/client-go/internal/notify"
	"github.com/carvalueai/client-go/internal/observability/metrics"
	"github.com/carvalueai/client-go/internal/valuation"
	"github.com/carvalueai/client-go/pkg/logging"
)

var tracer = otel.Tracer("carvalue.workflow")

// State is the orchestrator's position in the linear workflow. A failure at
// any step leaves the state where it was; the user retries the same step.
type State int

const (
	StateIdle State = iota
	StatePredicted
	StateOrderCreated
	StateVerified
	StateBooked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePredicted:
		return "predicted"
	case StateOrderCreated:
		return "order_created"
	case StateVerified:
		return "verified"
	case StateBooked:
		return "booked"
	default:
		return "unknown"
	}
}

var (
	// ErrStepInFlight rejects a step invoked while another is still running,
	// e.g. a double-submitted form.
	ErrStepInFlight = errors.New("workflow: step already in flight")
	// ErrNoPrediction rejects checkout before a successful prediction.
	ErrNoPrediction = errors.New("workflow: no prediction available")
	// ErrPaymentCancelled reports a user-dismissed checkout.
	ErrPaymentCancelled = errors.New("workflow: payment cancelled")
	// ErrPaymentFailed reports a provider-side payment failure.
	ErrPaymentFailed = errors.New("workflow: payment failed")
)

// PriceView receives the rendered prediction output: each animation frame of
// the price and the derived range.
type PriceView interface {
	ShowPrice(formatted string)
	ShowRange(formatted string)
}

type nopView struct{}

func (nopView) ShowPrice(string) {}
func (nopView) ShowRange(string) {}

// Config wires the orchestrator's collaborators.
type Config struct {
	Predictions *valuation.Service
	Checkout    *checkout.Service
	Provider    checkout.Provider
	Bookings    *inspection.Service
	Notifier    notify.Notifier
	Metrics     *metrics.WorkflowMetrics
	Logger      *logging.Logger
	Animator    *valuation.Animator
	View        PriceView
	// ReloadDelay is how long the booking confirmation stays up before the
	// run resets, mirroring the old page reload. Zero resets immediately.
	ReloadDelay time.Duration
}

// Orchestrator carries the car and order identifiers across the asynchronous
// steps of one workflow run. It is constructed per run and reset on
// completion.
type Orchestrator struct {
	predictions *valuation.Service
	checkout    *checkout.Service
	provider    checkout.Provider
	bookings    *inspection.Service
	notifier    notify.Notifier
	metrics     *metrics.WorkflowMetrics
	logger      *logging.Logger
	animator    *valuation.Animator
	view        PriceView
	reloadDelay time.Duration

	mu             sync.Mutex
	runID          uuid.UUID
	state          State
	busy           bool
	carID          string
	predictedPrice float64
	orderID        string
	// customer is snapshotted once at checkout initiation and reused at
	// booking time, so the booked date can never diverge from the date the
	// user paid for.
	customer *valuation.CustomerAttributes
}

// New creates an orchestrator for a fresh workflow run.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	view := cfg.View
	if view == nil {
		view = nopView{}
	}
	animator := cfg.Animator
	if animator == nil {
		animator = valuation.NewAnimator(1500 * time.Millisecond)
	}
	return &Orchestrator{
		predictions: cfg.Predictions,
		checkout:    cfg.Checkout,
		provider:    cfg.Provider,
		bookings:    cfg.Bookings,
		notifier:    cfg.Notifier,
		metrics:     cfg.Metrics,
		logger:      logger,
		animator:    animator,
		view:        view,
		reloadDelay: cfg.ReloadDelay,
		runID:       uuid.New(),
		state:       StateIdle,
	}
}

// State returns the current workflow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// RunID identifies this workflow run.
func (o *Orchestrator) RunID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runID.String()
}

// CarID returns the car identifier from the last successful prediction.
func (o *Orchestrator) CarID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.carID
}

// OrderID returns the order identifier from the last created order.
func (o *Orchestrator) OrderID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.orderID
}

// Reset discards all run state and starts a new run, the equivalent of the
// old page reload.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runID = uuid.New()
	o.state = StateIdle
	o.carID = ""
	o.predictedPrice = 0
	o.orderID = ""
	o.customer = nil
	o.logger.Info("workflow reset", "run_id", o.runID.String())
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.busy {
		return ErrStepInFlight
	}
	o.busy = true
	return nil
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

func (o *Orchestrator) observe(step, status string, started time.Time) {
	o.metrics.ObserveStep(step, status, time.Since(started).Seconds())
}

// fail logs the diagnostic error first, then delivers the user-visible
// message. No failure is retried automatically.
func (o *Orchestrator) fail(step, message string, err error) {
	o.logger.Error("workflow step failed", "run_id", o.RunID(), "step", step, "error", err)
	if o.notifier != nil {
		o.notifier.Failure(message)
	}
}

// userMessage maps an error to the message shown for a given step. Backend
// supplied error strings surface verbatim; auth failures share one message
// pair; anything else gets the step's generic transport message.
func userMessage(err error, transportMsg string) string {
	var verr *valuation.ValidationError
	if errors.As(err, &verr) {
		return "Please fill in " + verr.Field
	}
	if errors.Is(err, api.ErrNoSession) {
		return "No authentication token found. Please login again."
	}
	if errors.Is(err, api.ErrSessionExpired) {
		return "Session expired. Please login again."
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return transportMsg
}

// Predict runs the prediction step: validate the form, issue one call, store
// the car identifier, render the animated price and derived range.
func (o *Orchestrator) Predict(ctx context.Context, snapshot valuation.FormSnapshot) (*valuation.PredictionResult, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	ctx, span := tracer.Start(ctx, "workflow.predict")
	defer span.End()
	started := time.Now()

	result, err := o.predictions.Predict(ctx, snapshot)
	if err != nil {
		var verr *valuation.ValidationError
		if errors.As(err, &verr) {
			o.observe("predict", "validation_failed", started)
		} else {
			o.observe("predict", "failure", started)
		}
		o.fail("predict", userMessage(err, "Failed to predict price. Please try again."), err)
		return nil, err
	}

	o.mu.Lock()
	o.carID = result.CarID
	o.predictedPrice = result.PredictedPrice
	o.state = StatePredicted
	o.mu.Unlock()

	span.SetAttributes(
		attribute.String("carvalue.car_id", result.CarID),
		attribute.Float64("carvalue.predicted_price", result.PredictedPrice),
	)
	o.observe("predict", "success", started)

	o.view.ShowRange(valuation.FormatRange(result.PredictedPrice))
	o.animator.Animate(ctx, result.PredictedPrice, o.view.ShowPrice)

	return result, nil
}

// InitiateCheckout runs the rest of the workflow: validate the inspection
// form, create the order, hand control to the payment provider, and on a
// completed payment verify it and book the inspection. The customer snapshot
// is taken once here and reused for the booking.
func (o *Orchestrator) InitiateCheckout(ctx context.Context, snapshot valuation.FormSnapshot) (*inspection.BookingConfirmation, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	ctx, span := tracer.Start(ctx, "workflow.checkout")
	defer span.End()

	if verr := valuation.ValidateCustomerSnapshot(snapshot); verr != nil {
		o.fail("create_order", "Please fill in "+verr.Field, verr)
		return nil, verr
	}

	o.mu.Lock()
	carID := o.carID
	o.mu.Unlock()
	if carID == "" {
		o.fail("create_order", "Please predict the car price first", ErrNoPrediction)
		return nil, ErrNoPrediction
	}

	customer := valuation.CustomerFromSnapshot(snapshot)

	started := time.Now()
	order, err := o.checkout.CreateOrder(ctx, carID, customer)
	if err != nil {
		o.observe("create_order", "failure", started)
		o.fail("create_order", userMessage(err, "Failed to initiate payment. Please try again."), err)
		return nil, err
	}
	o.observe("create_order", "success", started)

	o.mu.Lock()
	o.orderID = order.OrderID
	o.customer = &customer
	o.state = StateOrderCreated
	o.mu.Unlock()
	span.SetAttributes(attribute.String("carvalue.order_id", order.OrderID))

	started = time.Now()
	outcome, err := o.provider.Collect(ctx, *order,
		checkout.Prefill{Name: customer.Name, Email: customer.Email, Contact: customer.Phone},
		checkout.Notes{CarID: carID, InspectionDate: customer.InspectionDate},
	)
	if err != nil {
		o.observe("collect", "failure", started)
		o.fail("collect", "Failed to collect payment. Please try again.", err)
		return nil, err
	}

	switch outcome.Kind {
	case checkout.OutcomeDismissed:
		o.observe("collect", "dismissed", started)
		o.fail("collect", "Payment cancelled. Please try again when ready.", ErrPaymentCancelled)
		return nil, ErrPaymentCancelled
	case checkout.OutcomeFailed:
		o.observe("collect", "failed", started)
		err := fmt.Errorf("%w: %s", ErrPaymentFailed, outcome.FailureReason)
		o.fail("collect", "Payment failed: "+outcome.FailureReason, err)
		return nil, err
	}
	o.observe("collect", "success", started)

	return o.verifyAndBook(ctx, *outcome.Payment)
}

// verifyAndBook submits the provider response for signature verification and,
// on success, immediately books the inspection against the verified order.
func (o *Orchestrator) verifyAndBook(ctx context.Context, payment checkout.PaymentResult) (*inspection.BookingConfirmation, error) {
	ctx, span := tracer.Start(ctx, "workflow.verify_and_book")
	defer span.End()

	started := time.Now()
	if err := o.checkout.VerifyPayment(ctx, payment); err != nil {
		o.observe("verify", "failure", started)
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			o.fail("verify", "Payment verification failed. Please contact support.", err)
		} else {
			o.fail("verify", userMessage(err, "Failed to verify payment. Please contact support with your payment details."), err)
		}
		return nil, err
	}
	o.observe("verify", "success", started)

	o.mu.Lock()
	o.state = StateVerified
	carID := o.carID
	customer := *o.customer
	o.mu.Unlock()

	started = time.Now()
	confirmation, err := o.bookings.Book(ctx, carID, payment.OrderID, customer)
	if err != nil {
		o.observe("book", "failure", started)
		o.fail("book", userMessage(err, "Failed to book inspection. Please contact support."), err)
		return nil, err
	}
	o.observe("book", "success", started)

	o.mu.Lock()
	o.state = StateBooked
	o.mu.Unlock()
	span.SetAttributes(attribute.String("carvalue.booking_id", confirmation.BookingID))

	if o.notifier != nil {
		o.notifier.Success(fmt.Sprintf(
			"Inspection booked successfully!\n\nBooking ID: %s\nDate: %s\n\nYou will receive a confirmation email shortly.",
			confirmation.BookingID, confirmation.Date,
		))
	}

	if o.reloadDelay > 0 {
		time.AfterFunc(o.reloadDelay, o.Reset)
	} else {
		o.Reset()
	}

	return confirmation, nil
}
