package sessions_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/superagent-ai/superagent/console/internal/sessions"
)

// exercise runs the contract every Store implementation must satisfy.
func exercise(t *testing.T, s sessions.Store) {
	t.Helper()
	ctx := context.Background()

	sess := &sessions.Session{UserID: "u1", Email: "a@b.co", AccessToken: "at"}
	if err := s.Create(ctx, sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == "" || sess.ExpiresAt.IsZero() {
		t.Fatalf("Create() did not stamp session: %+v", sess)
	}

	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "u1" || got.AccessToken != "at" {
		t.Errorf("Get() = %+v", got)
	}

	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, sess.ID); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, sessions.NewMemoryStore(time.Hour))
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := sessions.NewMemoryStore(time.Nanosecond)
	ctx := context.Background()

	sess := &sessions.Session{UserID: "u1"}
	if err := s.Create(ctx, sess); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, err := s.Get(ctx, sess.ID); !errors.Is(err, sessions.ErrNotFound) {
		t.Errorf("Get() expired session error = %v, want ErrNotFound", err)
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	s, err := sessions.NewRedisStore(context.Background(), url,
		sessions.WithPrefix("sa:test"), sessions.WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	exercise(t, s)
}
