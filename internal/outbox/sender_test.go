package outbox

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/snapshot"
	"go.uber.org/zap"
)

// mockPoster records delivery attempts and returns a configurable error.
type mockPoster struct {
	calls []postCall
	err   error
}

type postCall struct {
	UserEmail string
	Action    string
}

func (m *mockPoster) LogActivity(_ context.Context, userEmail, action string) error {
	m.calls = append(m.calls, postCall{userEmail, action})
	return m.err
}

func testDB(t *testing.T) *snapshot.DB {
	t.Helper()
	db, err := snapshot.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestQueueRecordSkipsEmptyFields(t *testing.T) {
	db := testDB(t)
	q := NewQueue(db, zap.NewNop())

	q.Record("", "contact added")
	q.Record("u@e.com", "")

	pending, err := db.PendingActivities()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestDrainDeliversQueuedEntries(t *testing.T) {
	db := testDB(t)
	q := NewQueue(db, zap.NewNop())
	mock := &mockPoster{}
	b := bus.New()
	ch, cancel := b.Subscribe("activity.", 10)
	defer cancel()

	q.Record("u@e.com", "label \"VIP\" created")
	q.Record("u@e.com", "blast sent")

	s := NewSender(db, mock, b, zap.NewNop(), time.Hour)
	s.DrainOnce(context.Background())

	if len(mock.calls) != 2 {
		t.Fatalf("delivery calls = %d, want 2", len(mock.calls))
	}
	if mock.calls[0].Action != "label \"VIP\" created" {
		t.Errorf("first action = %q (want oldest first)", mock.calls[0].Action)
	}

	pending, _ := db.PendingActivities()
	if len(pending) != 0 {
		t.Errorf("pending after drain = %d, want 0", len(pending))
	}

	select {
	case evt := <-ch:
		if evt.Kind != "activity.logged" {
			t.Errorf("event kind = %q", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no activity.logged event")
	}
}

func TestDeliveryFailureMarksFailedAndContinues(t *testing.T) {
	db := testDB(t)
	q := NewQueue(db, zap.NewNop())
	mock := &mockPoster{err: errors.New("backend returned 500")}

	q.Record("u@e.com", "contact deleted")

	s := NewSender(db, mock, nil, zap.NewNop(), time.Hour)
	s.DrainOnce(context.Background())

	// Failed entries leave the queue; delivery is best-effort by design.
	pending, _ := db.PendingActivities()
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0 (failed entries are not retried)", len(pending))
	}
	if len(mock.calls) != 1 {
		t.Errorf("delivery calls = %d, want 1", len(mock.calls))
	}
}

func TestBackgroundLoopDrains(t *testing.T) {
	db := testDB(t)
	q := NewQueue(db, zap.NewNop())
	mock := &mockPoster{}

	q.Record("u@e.com", "session connected")

	s := NewSender(db, mock, nil, zap.NewNop(), 10*time.Millisecond)
	s.Start(context.Background())
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		pending, _ := db.PendingActivities()
		if len(pending) == 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("outbox not drained by background loop")
}
