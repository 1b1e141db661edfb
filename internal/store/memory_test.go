package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/models"
)

// newTestStore creates a fresh in-memory store persisting into a temp dir.
func newTestStore(t *testing.T, dir string) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore(dir)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetProfile_NotFound(t *testing.T) {
	s := newTestStore(t, "")

	_, err := s.GetProfile(context.Background(), "missing")
	var nf *store.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("GetProfile() error = %v, want *ErrNotFound", err)
	}
	if nf.Entity != "profile" || nf.Key != "missing" {
		t.Errorf("ErrNotFound = %+v", nf)
	}
}

func TestUpsertProfile_PreservesCreatedAt(t *testing.T) {
	s := newTestStore(t, "")
	ctx := context.Background()

	p := &models.Profile{UserID: "u1", FirstName: "Ada"}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	created := p.CreatedAt
	if created.IsZero() {
		t.Fatal("CreatedAt not set on insert")
	}

	if err := s.UpsertProfile(ctx, &models.Profile{UserID: "u1", FirstName: "Ada", APIKey: "sk-1"}); err != nil {
		t.Fatalf("UpsertProfile() second call error = %v", err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if !got.HasAPIKey() || got.APIKey != "sk-1" {
		t.Errorf("APIKey = %q", got.APIKey)
	}
}

func TestGetProfile_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, "")
	ctx := context.Background()
	_ = s.UpsertProfile(ctx, &models.Profile{UserID: "u1", Company: "Acme"})

	got, _ := s.GetProfile(ctx, "u1")
	got.Company = "changed"

	again, _ := s.GetProfile(ctx, "u1")
	if again.Company != "Acme" {
		t.Errorf("stored profile mutated through returned pointer: %q", again.Company)
	}
}

func TestSnapshotPersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1 := store.NewMemoryStore(dir)
	want := &models.Profile{UserID: "u1", APIKey: "sk-1", FirstName: "Ada", LastName: "L", Company: "Acme", IsOnboarded: true}
	if err := s1.UpsertProfile(ctx, want); err != nil {
		t.Fatal(err)
	}
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2 := newTestStore(t, dir)
	got, err := s2.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile() after reload error = %v", err)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("reloaded profile mismatch (-want +got):\n%s", diff)
	}
}

func TestClose_Idempotent(t *testing.T) {
	s := store.NewMemoryStore(t.TempDir())
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
