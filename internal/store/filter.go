package store

import (
	"strings"

	"github.com/wablast/blast/internal/backend"
)

// SetSearchTerm sets the free-text contact filter.
func (s *Store) SetSearchTerm(term string) {
	s.mu.Lock()
	s.searchTerm = term
	s.mu.Unlock()
	s.persist()
}

// FilteredContacts derives the visible contact list: a contact passes
// when its name, phone or any assigned label name contains the search
// term (case-insensitive), and it carries the active label if one is set.
func (s *Store) FilteredContacts() []backend.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filteredLocked()
}

func (s *Store) filteredLocked() []backend.Contact {
	labelNames := make(map[string]string, len(s.labels))
	for _, l := range s.labels {
		labelNames[l.ID] = strings.ToLower(l.Name)
	}

	term := strings.ToLower(s.searchTerm)
	var out []backend.Contact
	for _, c := range s.contacts {
		if s.activeLabel != "" && !c.HasLabel(s.activeLabel) {
			continue
		}
		if term != "" && !matchesTerm(c, term, labelNames) {
			continue
		}
		c.Labels = cloneStrings(c.Labels)
		out = append(out, c)
	}
	return out
}

func matchesTerm(c backend.Contact, term string, labelNames map[string]string) bool {
	if strings.Contains(strings.ToLower(c.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(c.Phone), term) {
		return true
	}
	for _, id := range c.Labels {
		if strings.Contains(labelNames[id], term) {
			return true
		}
	}
	return false
}

// SelectAllFiltered adds every currently filtered contact's phone to the
// selection set. Contacts hidden by the active filter are never silently
// selected.
func (s *Store) SelectAllFiltered() {
	s.mu.Lock()
	var phones []string
	for _, c := range s.filteredLocked() {
		phones = append(phones, c.Phone)
	}
	s.selected = union(s.selected, phones)
	s.mu.Unlock()
	s.persist()
}

// DeselectAllFiltered removes every currently filtered contact's phone
// from the selection set, leaving hidden selections untouched.
func (s *Store) DeselectAllFiltered() {
	s.mu.Lock()
	var phones []string
	for _, c := range s.filteredLocked() {
		phones = append(phones, c.Phone)
	}
	s.selected = without(s.selected, phones)
	s.mu.Unlock()
	s.persist()
}

// AllFilteredSelected reports whether every filtered contact is selected.
func (s *Store) AllFilteredSelected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	filtered := s.filteredLocked()
	if len(filtered) == 0 {
		return false
	}
	for _, c := range filtered {
		if !contains(s.selected, c.Phone) {
			return false
		}
	}
	return true
}
