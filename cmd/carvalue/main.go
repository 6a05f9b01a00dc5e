package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carvalueai/client-go/internal/api"
	"github.com/carvalueai/client-go/internal/checkout"
	appconfig "github.com/carvalueai/client-go/internal/config"
	"github.com/carvalueai/client-go/internal/inspection"
	"github.com/carvalueai/client-go/internal/notify"
	"github.com/carvalueai/client-go/internal/observability/metrics"
	"github.com/carvalueai/client-go/internal/session"
	"github.com/carvalueai/client-go/internal/valuation"
	"github.com/carvalueai/client-go/internal/workflow"
	"github.com/carvalueai/client-go/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		logger.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "login":
		runLogin(ctx, store, os.Args[2:])
	case "logout":
		runLogout(ctx, cfg, store, logger)
	case "me":
		runMe(ctx, cfg, store, logger)
	case "run":
		runWorkflow(ctx, cfg, store, logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: carvalue <command>

commands:
  login -token T [-user-id ID] [-name NAME]   save a session token
  logout                                      invalidate and clear the session
  me                                          show the logged-in user
  run -snapshot FILE [-predict-only]          run the valuation workflow`)
}

func newSessionStore(cfg *appconfig.Config) (session.Store, error) {
	switch cfg.SessionBackend {
	case "redis":
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		return session.NewRedisStore(redis.NewClient(opts)), nil
	case "file", "":
		return session.NewFileStore(cfg.SessionFile), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

func newAPIClient(cfg *appconfig.Config, store session.Store, logger *logging.Logger) *api.Client {
	return api.NewClient(cfg.APIBaseURL, store,
		api.WithLogger(logger),
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithAuthExpiredHook(func() {
			fmt.Fprintln(os.Stderr, "Your session has expired. Run `carvalue login` to sign in again.")
		}),
	)
}

func runLogin(ctx context.Context, store session.Store, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	token := fs.String("token", "", "session token from the web login")
	userID := fs.String("user-id", "", "user id")
	name := fs.String("name", "", "display name")
	_ = fs.Parse(args)

	if *token == "" {
		fmt.Fprintln(os.Stderr, "login: -token is required")
		os.Exit(2)
	}
	if err := store.Save(ctx, session.Session{Token: *token, UserID: *userID, UserName: *name}); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Session saved.")
}

func runLogout(ctx context.Context, cfg *appconfig.Config, store session.Store, logger *logging.Logger) {
	client := newAPIClient(cfg, store, logger)
	if err := client.Logout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logout: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Logged out.")
}

func runMe(ctx context.Context, cfg *appconfig.Config, store session.Store, logger *logging.Logger) {
	client := newAPIClient(cfg, store, logger)
	info, err := client.Me(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "me: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Welcome, %s <%s>\n", info.Name, info.Email)
}

func runWorkflow(ctx context.Context, cfg *appconfig.Config, store session.Store, logger *logging.Logger, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	snapshotPath := fs.String("snapshot", "", "JSON file with form field values")
	predictOnly := fs.Bool("predict-only", false, "stop after the price prediction")
	_ = fs.Parse(args)

	if *snapshotPath == "" {
		fmt.Fprintln(os.Stderr, "run: -snapshot is required")
		os.Exit(2)
	}
	snapshot, err := loadSnapshot(*snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}

	client := newAPIClient(cfg, store, logger)
	wfMetrics := metrics.NewWorkflowMetrics(prometheus.DefaultRegisterer)

	var provider checkout.Provider
	if cfg.AllowFakePayments {
		provider = checkout.NewFakeProvider(logger)
	} else {
		provider = checkout.NewRazorpayProvider(cfg.RazorpayKeyID,
			checkout.WithListenAddr(cfg.CallbackAddr),
			checkout.WithCheckoutTimeout(cfg.CheckoutTimeout),
			checkout.WithBranding(cfg.MerchantName, "Professional Car Inspection Service", cfg.MerchantLogoURL, cfg.ThemeColor),
			checkout.WithRazorpayLogger(logger),
			checkout.WithExtraRoutes(func(r chi.Router) {
				r.Handle("/metrics", promhttp.Handler())
			}),
		)
	}

	orch := workflow.New(workflow.Config{
		Predictions: valuation.NewService(client, logger),
		Checkout:    checkout.NewService(client, cfg.InspectionFee, logger),
		Provider:    provider,
		Bookings:    inspection.NewService(client, cfg.InspectionTime, logger),
		Notifier:    notify.NewTerminal(os.Stdout, logger),
		Metrics:     wfMetrics,
		Logger:      logger,
		Animator:    valuation.NewAnimator(cfg.AnimationDuration),
		View:        terminalView{},
		ReloadDelay: cfg.ReloadDelay,
	})

	result, err := orch.Predict(ctx, snapshot)
	if err != nil {
		os.Exit(1)
	}
	fmt.Println()
	logger.Debug("prediction complete", "car_id", result.CarID)

	if *predictOnly {
		return
	}

	if _, err := orch.InitiateCheckout(ctx, snapshot); err != nil {
		os.Exit(1)
	}

	// Leave the confirmation visible for a moment before the run resets.
	time.Sleep(cfg.ReloadDelay)
}

func loadSnapshot(path string) (valuation.FormSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snapshot valuation.FormSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}

// terminalView renders the predicted price in place, animation frames
// overwriting one another on a single line.
type terminalView struct{}

func (terminalView) ShowPrice(formatted string) {
	fmt.Printf("\rEstimated value: %s        ", formatted)
}

func (terminalView) ShowRange(formatted string) {
	fmt.Printf("Expected range: %s\n", formatted)
}
