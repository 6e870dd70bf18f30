package snapshot

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wablast/blast/internal/backend"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveLoadRoundtrip(t *testing.T) {
	db := testDB(t)

	in := &State{
		Contacts: []backend.Contact{
			{ID: "c1", Name: "Alice", Phone: "111", Labels: []string{"l1", "l2"}},
			{ID: "c2", Name: "", Phone: "222", Labels: []string{}},
		},
		Labels: []backend.Label{
			{ID: "l1", Name: "VIP", Color: "#3b82f6", UserEmail: "u@e.com", ContactIDs: []string{"c1"}},
			{ID: "l2", Name: "Leads", UserEmail: "u@e.com", ContactIDs: []string{"c1"}},
		},
		Selected:    []string{"222", "111"},
		Message:     "hello there",
		Title:       "spring promo",
		UserID:      "u-42",
		UserEmail:   "u@e.com",
		QRCodeURL:   "https://example.com/qr.png",
		ActiveLabel: "l1",
		SearchTerm:  "ali",
	}

	if err := db.Save(in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	out, err := db.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if !reflect.DeepEqual(out, in) {
		t.Errorf("roundtrip mismatch:\n got  %+v\n want %+v", out, in)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	db := testDB(t)

	first := &State{Contacts: []backend.Contact{{ID: "c1", Phone: "111", Labels: []string{}}}}
	if err := db.Save(first); err != nil {
		t.Fatal(err)
	}
	second := &State{Contacts: []backend.Contact{{ID: "c2", Phone: "222", Labels: []string{}}}}
	if err := db.Save(second); err != nil {
		t.Fatal(err)
	}

	out, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Contacts) != 1 || out.Contacts[0].ID != "c2" {
		t.Errorf("contacts = %+v, want only c2", out.Contacts)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	db := testDB(t)
	out, err := db.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(out.Contacts) != 0 || len(out.Labels) != 0 || out.Message != "" {
		t.Errorf("empty db snapshot = %+v", out)
	}
}

func TestActivityOutboxLifecycle(t *testing.T) {
	db := testDB(t)

	if err := db.QueueActivity("a1", "u@e.com", "contact added"); err != nil {
		t.Fatal(err)
	}
	if err := db.QueueActivity("a2", "u@e.com", "blast sent"); err != nil {
		t.Fatal(err)
	}

	pending, err := db.PendingActivities()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	if pending[0].ID != "a1" {
		t.Errorf("first pending = %q, want a1 (oldest first)", pending[0].ID)
	}

	if err := db.MarkActivitySent("a1"); err != nil {
		t.Fatal(err)
	}
	if err := db.MarkActivityFailed("a2", "backend returned 500"); err != nil {
		t.Fatal(err)
	}

	pending, err = db.PendingActivities()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after marks = %d, want 0", len(pending))
	}
}
