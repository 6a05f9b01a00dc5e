package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewFileStore(filepath.Join(t.TempDir(), "carvalue", "session.json"))

	if _, err := st.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}
	if IsPresent(ctx, st) {
		t.Fatal("empty store reported a session")
	}

	want := Session{Token: "tok_abc", UserID: "user_1", UserName: "Priya"}
	if err := st.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", *got, want)
	}
	if !IsPresent(ctx, st) {
		t.Fatal("saved session not reported present")
	}

	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := st.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
	// Clearing an already-empty store is a no-op.
	if err := st.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := NewRedisStore(client)

	if _, err := st.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	want := Session{Token: "tok_abc", UserID: "user_1", UserName: "Priya"}
	if err := st.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if *got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", *got, want)
	}

	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if IsPresent(ctx, st) {
		t.Fatal("cleared store still reports a session")
	}
}

func TestRedisStoreEmptyTokenIsAbsent(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := NewRedisStore(client)

	// A blank token does not count as a valid session.
	if err := st.Save(ctx, Session{Token: "", UserID: "user_1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := st.Get(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank token, got %v", err)
	}
}
