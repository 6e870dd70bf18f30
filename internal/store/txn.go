package store

import "github.com/wablast/blast/internal/backend"

// txn is the optimistic-update transaction shared by the bulk operations:
// snapshot the entity collections, apply the target state locally, then
// commit (nothing to do) or roll back to the exact snapshot when the
// batched network call fails.
type txn struct {
	s            *Store
	prevContacts []backend.Contact
	prevLabels   []backend.Label
}

// begin snapshots the collections and applies mutate in one critical
// section, so no reader ever observes a half-applied bulk update.
func (s *Store) begin(mutate func()) *txn {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &txn{
		s:            s,
		prevContacts: cloneContacts(s.contacts),
		prevLabels:   cloneLabels(s.labels),
	}
	mutate()
	return t
}

// rollback restores the collections captured at begin. The restore is
// exact: any interleaved mutation from a concurrent operation is
// overwritten (last write wins, see package doc).
func (t *txn) rollback() {
	t.s.mu.Lock()
	t.s.contacts = t.prevContacts
	t.s.labels = t.prevLabels
	t.s.mu.Unlock()
}
