package store

import (
	"testing"

	"github.com/wablast/blast/internal/backend"
)

func filterFixture(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t, &fakeBackend{})
	s.SetContacts([]backend.Contact{
		{ID: "c1", Name: "Alice", Phone: "5511000000001", Labels: []string{"l1"}},
		{ID: "c2", Name: "Bob", Phone: "5511000000002"},
		{ID: "c3", Name: "Carol", Phone: "5521770000003", Labels: []string{"l2"}},
		{ID: "c4", Name: "Dave", Phone: "5521000000004", Labels: []string{"l1", "l2"}},
		{ID: "c5", Name: "", Phone: "5531000000005"},
	})
	s.SetLabels([]backend.Label{
		{ID: "l1", Name: "VIP", ContactIDs: []string{"c1", "c4"}},
		{ID: "l2", Name: "Leads", ContactIDs: []string{"c3", "c4"}},
	})
	return s
}

func phonesOf(contacts []backend.Contact) []string {
	out := make([]string, len(contacts))
	for i, c := range contacts {
		out[i] = c.Phone
	}
	return out
}

func TestFilteredContacts(t *testing.T) {
	tests := []struct {
		name        string
		search      string
		activeLabel string
		want        []string
	}{
		{"no filter returns everyone", "", "", []string{"c1", "c2", "c3", "c4", "c5"}},
		{"search matches name", "ali", "", []string{"c1"}},
		{"search is case-insensitive", "BOB", "", []string{"c2"}},
		{"search matches phone", "770000", "", []string{"c3"}},
		{"search matches an assigned label name", "vip", "", []string{"c1", "c4"}},
		{"active label filters membership", "", "l2", []string{"c3", "c4"}},
		{"search and label compose", "dave", "l1", []string{"c4"}},
		{"label member not matching search is hidden", "alice", "l2", nil},
		{"no match", "zzz", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := filterFixture(t)
			s.SetSearchTerm(tt.search)
			s.SetActiveLabel(tt.activeLabel)

			got := s.FilteredContacts()
			if len(got) != len(tt.want) {
				t.Fatalf("filtered = %v, want ids %v", phonesOf(got), tt.want)
			}
			for i, c := range got {
				if c.ID != tt.want[i] {
					t.Fatalf("filtered[%d] = %s, want %s", i, c.ID, tt.want[i])
				}
			}
		})
	}
}

func TestSelectAllFilteredIsScopedToTheFilter(t *testing.T) {
	s := filterFixture(t)
	s.SetActiveLabel("l2") // c3 and c4 visible, three contacts hidden

	s.SelectAllFiltered()
	got := s.Selected()
	if len(got) != 2 {
		t.Fatalf("selected = %v, want only the 2 filtered phones", got)
	}
	for _, phone := range got {
		if phone != "5521770000003" && phone != "5521000000004" {
			t.Fatalf("selected hidden contact %s", phone)
		}
	}
}

func TestDeselectAllFilteredKeepsHiddenSelections(t *testing.T) {
	s := filterFixture(t)
	s.SelectContact("5511000000001") // Alice, will be hidden by the filter
	s.SelectContact("5521770000003") // Carol, stays visible

	s.SetActiveLabel("l2")
	s.DeselectAllFiltered()

	got := s.Selected()
	if len(got) != 1 || got[0] != "5511000000001" {
		t.Fatalf("selected = %v, want only the hidden phone kept", got)
	}
}

func TestSelectAllFilteredIsIdempotent(t *testing.T) {
	s := filterFixture(t)
	s.SetSearchTerm("55")
	s.SelectAllFiltered()
	s.SelectAllFiltered()
	if got := s.Selected(); len(got) != 5 {
		t.Fatalf("selected = %v, want 5 unique phones", got)
	}
}

func TestAllFilteredSelected(t *testing.T) {
	s := filterFixture(t)
	s.SetActiveLabel("l1")
	if s.AllFilteredSelected() {
		t.Fatal("reported all selected before selecting")
	}
	s.SelectAllFiltered()
	if !s.AllFilteredSelected() {
		t.Fatal("not all filtered reported selected after select-all")
	}

	s.SetActiveLabel("")
	if s.AllFilteredSelected() {
		t.Fatal("widening the filter should break all-selected")
	}
}
