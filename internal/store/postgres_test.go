package store_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/models"
)

func newPostgresStore(t *testing.T) *store.PostgresStore {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := store.NewPostgresStore(ctx, url, 2)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func TestPostgresStore_UpsertAndGet(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	p := &models.Profile{UserID: id, FirstName: "Ada"}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	p.APIKey = "sk-1"
	p.IsOnboarded = true
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile() update error = %v", err)
	}

	got, err := s.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.APIKey != "sk-1" || !got.IsOnboarded || got.FirstName != "Ada" {
		t.Errorf("GetProfile() = %+v", got)
	}
}

func TestPostgresStore_NotFound(t *testing.T) {
	s := newPostgresStore(t)

	for _, key := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err := s.GetProfile(context.Background(), key)
		var nf *store.ErrNotFound
		if !errors.As(err, &nf) {
			t.Errorf("GetProfile(%q) error = %v, want *ErrNotFound", key, err)
		}
	}
}
