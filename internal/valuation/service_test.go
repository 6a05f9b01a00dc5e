package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/carvalueai/client-go/internal/api"
	"github.com/carvalueai/client-go/internal/session"
)

func validCarSnapshot() FormSnapshot {
	return FormSnapshot{
		"model":        "Swift",
		"year":         "2018",
		"km_driven":    "40000",
		"fuel":         "Petrol",
		"seller_type":  "Individual",
		"transmission": "Manual",
		"owner":        "First Owner",
		"seats":        "5",
	}
}

func newClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	st := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err := st.Save(context.Background(), session.Session{Token: "tok_abc"}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return api.NewClient(baseURL, st)
}

func TestPredictIssuesExactlyOneCall(t *testing.T) {
	calls := 0
	var gotPayload CarAttributes
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/predict" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success", "car_id": "car_123", "predicted_price": 500000,
		})
	}))
	defer ts.Close()

	svc := NewService(newClient(t, ts.URL), nil)
	res, err := svc.Predict(context.Background(), validCarSnapshot())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
	if res.CarID != "car_123" || res.PredictedPrice != 500000 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotPayload.Name != "Swift" || gotPayload.Year != 2018 || gotPayload.KmDriven != 40000 {
		t.Fatalf("unexpected payload: %+v", gotPayload)
	}

	// The derived display values from this scenario.
	if got := FormatINR(int64(res.PredictedPrice)); got != "₹5,00,000" {
		t.Fatalf("displayed price %q", got)
	}
	if got := FormatRange(res.PredictedPrice); got != "₹4,50,000 - ₹5,50,000" {
		t.Fatalf("displayed range %q", got)
	}
}

func TestPredictValidationGateIssuesZeroCalls(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	snap := validCarSnapshot()
	delete(snap, "fuel")

	svc := NewService(newClient(t, ts.URL), nil)
	_, err := svc.Predict(context.Background(), snap)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Field != "fuel" {
		t.Fatalf("expected fuel flagged, got %s", verr.Field)
	}
	if calls != 0 {
		t.Fatalf("expected zero outbound calls, got %d", calls)
	}
}

func TestPredictSurfacesBackendError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": "model unavailable"})
	}))
	defer ts.Close()

	svc := NewService(newClient(t, ts.URL), nil)
	_, err := svc.Predict(context.Background(), validCarSnapshot())

	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.Error, got %v", err)
	}
	if apiErr.Message != "model unavailable" {
		t.Fatalf("backend message not surfaced verbatim: %q", apiErr.Message)
	}
}
