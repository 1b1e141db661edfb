package sessions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/superagent-ai/superagent/console/internal/sessions"
)

type failingSweeper struct{}

func (failingSweeper) Sweep(context.Context) (int, error) {
	return 0, errors.New("boom")
}

func TestJanitor_RunOnceDropsExpired(t *testing.T) {
	s := sessions.NewMemoryStore(50 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.Create(ctx, &sessions.Session{UserID: "u"}); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(100 * time.Millisecond)

	if n := sessions.NewJanitor(s, time.Hour).RunOnce(ctx); n != 3 {
		t.Errorf("RunOnce() removed %d sessions, want 3", n)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after sweep, want 0", s.Len())
	}
}

func TestJanitor_KeepsLiveSessions(t *testing.T) {
	s := sessions.NewMemoryStore(time.Hour)
	ctx := context.Background()
	sess := &sessions.Session{UserID: "u"}
	if err := s.Create(ctx, sess); err != nil {
		t.Fatal(err)
	}
	if n := sessions.NewJanitor(s, time.Hour).RunOnce(ctx); n != 0 {
		t.Errorf("RunOnce() = %d, want 0", n)
	}
	if _, err := s.Get(ctx, sess.ID); err != nil {
		t.Errorf("Get() error = %v", err)
	}
}

func TestJanitor_SweepErrorIsLogged(t *testing.T) {
	if n := sessions.NewJanitor(failingSweeper{}, 0).RunOnce(context.Background()); n != 0 {
		t.Errorf("RunOnce() = %d, want 0", n)
	}
}

func TestJanitor_StartStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessions.NewJanitor(sessions.NewMemoryStore(time.Hour), time.Hour).Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}
