package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/carvalueai/client-go/internal/session"
)

func newStore(t *testing.T, sess *session.Session) session.Store {
	t.Helper()
	st := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if sess != nil {
		if err := st.Save(context.Background(), *sess); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	return st
}

func TestPostJSONAttachesBearer(t *testing.T) {
	var gotAuth, gotContentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success"})
	}))
	defer ts.Close()

	st := newStore(t, &session.Session{Token: "tok_abc", UserID: "u1", UserName: "Priya"})
	c := NewClient(ts.URL, st)

	if err := c.PostJSON(context.Background(), "/predict", map[string]any{"name": "Swift"}, nil); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
	if gotAuth != "Bearer tok_abc" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected Content-Type header: %q", gotContentType)
	}
}

func TestNoSessionIssuesNoCall(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer ts.Close()

	hookFired := false
	c := NewClient(ts.URL, newStore(t, nil), WithAuthExpiredHook(func() { hookFired = true }))

	err := c.PostJSON(context.Background(), "/predict", map[string]any{}, nil)
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected zero outbound calls, got %d", calls)
	}
	if !hookFired {
		t.Fatal("auth expired hook not fired")
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	ctx := context.Background()
	st := newStore(t, &session.Session{Token: "tok_stale"})
	hookFired := false
	c := NewClient(ts.URL, st, WithAuthExpiredHook(func() { hookFired = true }))

	err := c.PostJSON(ctx, "/predict", map[string]any{}, nil)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if session.IsPresent(ctx, st) {
		t.Fatal("session not cleared after 401")
	}
	if !hookFired {
		t.Fatal("auth expired hook not fired")
	}
}

func TestBodyDiscriminatorFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 with a failure body is still a failure.
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": "model unavailable"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, newStore(t, &session.Session{Token: "tok_abc"}))

	err := c.PostJSON(context.Background(), "/predict", map[string]any{}, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "model unavailable" {
		t.Fatalf("backend error not surfaced verbatim: %q", apiErr.Message)
	}
}

func TestTransportFailurePropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	c := NewClient(ts.URL, newStore(t, &session.Session{Token: "tok_abc"}))

	err := c.PostJSON(context.Background(), "/predict", map[string]any{}, nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if errors.Is(err, ErrNoSession) || errors.Is(err, ErrSessionExpired) {
		t.Fatalf("transport failure misclassified: %v", err)
	}
}

func TestMeDecodesProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "name": "Priya", "email": "priya@example.com"})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, newStore(t, &session.Session{Token: "tok_abc"}))
	info, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if info.Name != "Priya" || info.Email != "priya@example.com" {
		t.Fatalf("unexpected profile: %+v", info)
	}
}

func TestLogoutClearsSessionEvenOnServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx := context.Background()
	st := newStore(t, &session.Session{Token: "tok_abc"})
	c := NewClient(ts.URL, st)

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if session.IsPresent(ctx, st) {
		t.Fatal("session survived logout")
	}
}
