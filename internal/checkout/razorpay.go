package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carvalueai/client-go/pkg/logging"
)

const defaultCheckoutTimeout = 10 * time.Minute

// RazorpayProvider serves the hosted checkout page on a loopback HTTP server
// and waits for the page's callbacks. The page embeds Razorpay's checkout.js
// configured with the order, merchant branding, and prefilled contact fields;
// its success, failure, and dismiss hooks each POST back to a distinct
// callback route.
type RazorpayProvider struct {
	keyID        string
	merchantName string
	description  string
	logoURL      string
	themeColor   string
	listenAddr   string
	timeout      time.Duration
	logger       *logging.Logger

	// onOpen receives the local checkout URL once the server is listening.
	// The default prints it for the user to open.
	onOpen func(url string)

	// extraRoutes lets the caller mount additional handlers (e.g. /metrics)
	// on the loopback server.
	extraRoutes func(r chi.Router)
}

// RazorpayOption configures the provider.
type RazorpayOption func(*RazorpayProvider)

// WithListenAddr sets the loopback listen address ("127.0.0.1:0" for an
// ephemeral port).
func WithListenAddr(addr string) RazorpayOption {
	return func(p *RazorpayProvider) {
		if addr != "" {
			p.listenAddr = addr
		}
	}
}

// WithCheckoutTimeout bounds how long Collect waits for an outcome.
func WithCheckoutTimeout(d time.Duration) RazorpayOption {
	return func(p *RazorpayProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithBranding overrides the merchant display identity.
func WithBranding(name, description, logoURL, themeColor string) RazorpayOption {
	return func(p *RazorpayProvider) {
		if name != "" {
			p.merchantName = name
		}
		if description != "" {
			p.description = description
		}
		p.logoURL = logoURL
		if themeColor != "" {
			p.themeColor = themeColor
		}
	}
}

// WithOpenHook replaces the default "print the URL" behavior.
func WithOpenHook(fn func(url string)) RazorpayOption {
	return func(p *RazorpayProvider) {
		p.onOpen = fn
	}
}

// WithExtraRoutes mounts additional handlers on the loopback server.
func WithExtraRoutes(fn func(r chi.Router)) RazorpayOption {
	return func(p *RazorpayProvider) {
		p.extraRoutes = fn
	}
}

// WithRazorpayLogger sets a custom logger.
func WithRazorpayLogger(logger *logging.Logger) RazorpayOption {
	return func(p *RazorpayProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewRazorpayProvider creates a provider. keyID is the fallback key used when
// the backend's order response does not carry one.
func NewRazorpayProvider(keyID string, opts ...RazorpayOption) *RazorpayProvider {
	p := &RazorpayProvider{
		keyID:        keyID,
		merchantName: "CarValueAI",
		description:  "Professional Car Inspection Service",
		themeColor:   "#2563eb",
		listenAddr:   "127.0.0.1:0",
		timeout:      defaultCheckoutTimeout,
		logger:       logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.onOpen == nil {
		logger := p.logger
		p.onOpen = func(url string) {
			logger.Info("checkout ready", "url", url)
			fmt.Printf("Open %s in your browser to complete the payment.\n", url)
		}
	}
	return p
}

type checkoutPageData struct {
	KeyID       string
	OrderID     string
	Amount      int
	Currency    string
	Merchant    string
	Description string
	LogoURL     string
	ThemeColor  string
	Prefill     Prefill
	Notes       Notes
}

// failureCallback mirrors Razorpay's payment.failed event shape.
type failureCallback struct {
	Error struct {
		Description string `json:"description"`
	} `json:"error"`
}

// Collect serves the checkout page and blocks until the page reports one of
// the three outcomes, the timeout elapses, or ctx is cancelled.
func (p *RazorpayProvider) Collect(ctx context.Context, order OrderContext, prefill Prefill, notes Notes) (*Outcome, error) {
	ln, err := net.Listen("tcp", p.listenAddr)
	if err != nil {
		return nil, fmt.Errorf("checkout: listen: %w", err)
	}

	outcomes := make(chan Outcome, 1)
	var once sync.Once
	deliver := func(o Outcome) {
		once.Do(func() { outcomes <- o })
	}

	keyID := order.KeyID
	if keyID == "" {
		keyID = p.keyID
	}
	currency := order.Currency
	if currency == "" {
		currency = "INR"
	}
	page := checkoutPageData{
		KeyID:       keyID,
		OrderID:     order.OrderID,
		Amount:      order.Amount,
		Currency:    currency,
		Merchant:    p.merchantName,
		Description: p.description,
		LogoURL:     p.logoURL,
		ThemeColor:  p.themeColor,
		Prefill:     prefill,
		Notes:       notes,
	}

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := checkoutPage.Execute(w, page); err != nil {
			p.logger.Error("failed to render checkout page", "error", err)
		}
	})
	r.Post("/callback/success", func(w http.ResponseWriter, req *http.Request) {
		var result PaymentResult
		if err := json.NewDecoder(req.Body).Decode(&result); err != nil {
			http.Error(w, "bad callback payload", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		deliver(Outcome{Kind: OutcomeCompleted, Payment: &result})
	})
	r.Post("/callback/failure", func(w http.ResponseWriter, req *http.Request) {
		var cb failureCallback
		if err := json.NewDecoder(req.Body).Decode(&cb); err != nil {
			http.Error(w, "bad callback payload", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		deliver(Outcome{Kind: OutcomeFailed, FailureReason: cb.Error.Description})
	})
	r.Post("/callback/dismiss", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
		deliver(Outcome{Kind: OutcomeDismissed})
	})
	if p.extraRoutes != nil {
		p.extraRoutes(r)
	}

	srv := &http.Server{Handler: r}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			p.logger.Error("checkout server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := "http://" + ln.Addr().String() + "/"
	p.logger.Info("opening checkout", "order_id", order.OrderID, "amount", order.Amount, "url", url)
	p.onOpen(url)

	select {
	case outcome := <-outcomes:
		p.logger.Info("checkout resolved", "order_id", order.OrderID, "outcome", outcome.Kind.String())
		return &outcome, nil
	case <-time.After(p.timeout):
		return nil, fmt.Errorf("checkout: timed out after %s waiting for payment", p.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var checkoutPage = template.Must(template.New("checkout").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Merchant}} — Inspection Payment</title>
  <script src="https://checkout.razorpay.com/v1/checkout.js"></script>
</head>
<body>
<script>
  function post(path, body) {
    return fetch(path, {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(body || {})
    }).then(function () { document.body.innerHTML = '<p>You can close this tab.</p>'; });
  }

  var rzp = new Razorpay({
    key: {{.KeyID}},
    amount: {{.Amount}},
    currency: {{.Currency}},
    name: {{.Merchant}},
    description: {{.Description}},
    image: {{.LogoURL}},
    order_id: {{.OrderID}},
    handler: function (response) { post('/callback/success', response); },
    prefill: {
      name: {{.Prefill.Name}},
      email: {{.Prefill.Email}},
      contact: {{.Prefill.Contact}}
    },
    notes: {
      car_id: {{.Notes.CarID}},
      inspection_date: {{.Notes.InspectionDate}}
    },
    theme: { color: {{.ThemeColor}} },
    modal: { ondismiss: function () { post('/callback/dismiss'); } }
  });
  rzp.on('payment.failed', function (response) { post('/callback/failure', response); });
  rzp.open();
</script>
</body>
</html>
`))
