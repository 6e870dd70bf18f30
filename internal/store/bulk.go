package store

import (
	"context"
	"fmt"

	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MassAssignLabel attaches a label to every contact in contactIDs:
// optimistic local apply with set-union semantics, one batched call
// carrying the full id list, exact snapshot rollback on failure.
func (s *Store) MassAssignLabel(ctx context.Context, contactIDs []string, labelID, ownerKey string) error {
	if len(contactIDs) == 0 || labelID == "" {
		return nil
	}

	t := s.begin(func() {
		for i := range s.contacts {
			if contains(contactIDs, s.contacts[i].ID) {
				s.contacts[i].Labels = union(s.contacts[i].Labels, []string{labelID})
			}
		}
		for i := range s.labels {
			if s.labels[i].ID == labelID {
				s.labels[i].ContactIDs = union(s.labels[i].ContactIDs, contactIDs)
			}
		}
	})
	s.persist()

	if err := s.api.MassAssignLabel(ctx, contactIDs, labelID, ownerKey); err != nil {
		s.logger.Error("mass assign failed", zap.Error(err),
			zap.String("label_id", labelID), zap.Int("contacts", len(contactIDs)))
		t.rollback()
		s.persist()
		s.notify(bus.NoticeError, "could not assign label, please try again")
		return err
	}

	s.publish("label.mass_assigned", map[string]any{"label_id": labelID, "count": len(contactIDs)})
	s.record(ownerKey, fmt.Sprintf("label %s mass-assigned to %d contacts", labelID, len(contactIDs)))
	return nil
}

// MassDeassignLabel is the mirror operation: filter the label out of the
// named contacts and the contacts out of the label, same batched call and
// rollback discipline.
func (s *Store) MassDeassignLabel(ctx context.Context, contactIDs []string, labelID, ownerKey string) error {
	if len(contactIDs) == 0 || labelID == "" {
		return nil
	}

	t := s.begin(func() {
		for i := range s.contacts {
			if contains(contactIDs, s.contacts[i].ID) {
				s.contacts[i].Labels = without(s.contacts[i].Labels, []string{labelID})
			}
		}
		for i := range s.labels {
			if s.labels[i].ID == labelID {
				s.labels[i].ContactIDs = without(s.labels[i].ContactIDs, contactIDs)
			}
		}
	})
	s.persist()

	if err := s.api.MassDeassignLabel(ctx, contactIDs, labelID, ownerKey); err != nil {
		s.logger.Error("mass deassign failed", zap.Error(err),
			zap.String("label_id", labelID), zap.Int("contacts", len(contactIDs)))
		t.rollback()
		s.persist()
		s.notify(bus.NoticeError, "could not remove label, please try again")
		return err
	}

	s.publish("label.mass_deassigned", map[string]any{"label_id": labelID, "count": len(contactIDs)})
	s.record(ownerKey, fmt.Sprintf("label %s mass-deassigned from %d contacts", labelID, len(contactIDs)))
	return nil
}

// MassDeleteContacts deletes every loaded contact whose phone is in
// phones. The cascade walks the label direction first: each affected
// label gets one batched deassign (in parallel across labels) so no label
// retains a dangling contact id even if the delete itself fails partway.
// There is no rollback after the cascade; a failed delete leaves an
// accepted inconsistency window repaired by Refresh.
func (s *Store) MassDeleteContacts(ctx context.Context, ownerKey string, phones []string) error {
	// Resolve against loaded contacts; stale selection entries are ignored.
	s.mu.RLock()
	var contactIDs, resolvedPhones []string
	for _, c := range s.contacts {
		if contains(phones, c.Phone) {
			contactIDs = append(contactIDs, c.ID)
			resolvedPhones = append(resolvedPhones, c.Phone)
		}
	}
	var affected []string
	for _, l := range s.labels {
		for _, id := range contactIDs {
			if l.HasContact(id) {
				affected = append(affected, l.ID)
				break
			}
		}
	}
	s.mu.RUnlock()

	if len(contactIDs) == 0 {
		return nil
	}

	s.status.Loading(status.Contacts)

	g, gctx := errgroup.WithContext(ctx)
	for _, labelID := range affected {
		labelID := labelID
		g.Go(func() error {
			return s.api.MassDeassignLabel(gctx, contactIDs, labelID, ownerKey)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("mass delete cascade failed", zap.Error(err), zap.Int("contacts", len(contactIDs)))
		s.status.Fail(status.Contacts)
		s.notify(bus.NoticeError, "could not delete contacts, please try again")
		return err
	}

	s.mu.Lock()
	for i := range s.labels {
		if contains(affected, s.labels[i].ID) {
			s.labels[i].ContactIDs = without(s.labels[i].ContactIDs, contactIDs)
		}
	}
	kept := s.contacts[:0:0]
	for _, c := range s.contacts {
		if !contains(resolvedPhones, c.Phone) {
			kept = append(kept, c)
		}
	}
	s.contacts = kept
	s.selected = without(s.selected, resolvedPhones)
	s.mu.Unlock()
	s.persist()

	if err := s.api.MassDeleteContacts(ctx, ownerKey, resolvedPhones); err != nil {
		s.logger.Error("mass delete failed", zap.Error(err), zap.Int("contacts", len(resolvedPhones)))
		s.status.Fail(status.Contacts)
		s.notify(bus.NoticeError, "could not delete contacts, please try again")
		return err
	}

	s.status.Succeed(status.Contacts)
	s.publish("contact.mass_deleted", len(resolvedPhones))
	s.notify(bus.NoticeSuccess, fmt.Sprintf("%d contacts deleted", len(resolvedPhones)))
	s.record(ownerKey, fmt.Sprintf("%d contacts mass-deleted", len(resolvedPhones)))
	return nil
}
