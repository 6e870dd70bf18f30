package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/wablast/blast/internal/backend"
	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/lock"
	"github.com/wablast/blast/internal/outbox"
	"github.com/wablast/blast/internal/snapshot"
	"github.com/wablast/blast/internal/status"
	"github.com/wablast/blast/internal/store"
	intsync "github.com/wablast/blast/internal/sync"
	"go.uber.org/zap"
)

// TestDaemonLifecycle wires the components the fx module composes, by
// hand, and exercises one full start/work/stop cycle against a stub
// backend.
func TestDaemonLifecycle(t *testing.T) {
	profileDir := t.TempDir()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/contacts/u@x.com":
			_, _ = w.Write([]byte(`[{"_id":"c1","name":"Alice","phone":"5511000000001"}]`))
		case r.URL.Path == "/api/labels/get-labels":
			_, _ = w.Write([]byte(`[]`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	lk, err := lock.Acquire(profileDir)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = lk.Release() }()

	db, err := snapshot.Open(filepath.Join(profileDir, "blast.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	logger := zap.NewNop()
	b := bus.New()
	api := backend.New(srv.URL, srv.URL)
	queue := outbox.NewQueue(db, logger)
	sender := outbox.NewSender(db, api, b, logger, 20*time.Millisecond)
	s := store.New(api, b, status.NewSet(b), logger,
		store.WithAuditor(queue), store.WithSaver(db))
	s.SetUserEmail("u@x.com")
	engine := intsync.NewEngine(s, b, "u@x.com", logger, intsync.WithInterval(time.Hour))

	sender.Start(context.Background())
	engine.Start(context.Background())
	defer func() {
		engine.Stop()
		sender.Stop()
	}()

	// The engine's initial refresh must populate the store.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(s.Contacts()) == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(s.Contacts()); got != 1 {
		t.Fatalf("contact count = %d, want 1 after initial refresh", got)
	}

	// A recorded audit entry drains through the sender.
	queue.Record("u@x.com", "contact added")
	deadline = time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		pending, err := db.PendingActivities()
		if err != nil {
			t.Fatal(err)
		}
		if len(pending) == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if pending, _ := db.PendingActivities(); len(pending) != 0 {
		t.Fatalf("outbox still holds %d entries", len(pending))
	}

	// The refreshed state persisted; a fresh load sees it.
	state, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(state.Contacts) != 1 || state.Contacts[0].Phone != "5511000000001" {
		t.Fatalf("persisted contacts = %+v", state.Contacts)
	}

	// A second daemon on the profile must be refused.
	if _, err := lock.Acquire(profileDir); err == nil {
		t.Fatal("second lock acquire succeeded")
	}
}
