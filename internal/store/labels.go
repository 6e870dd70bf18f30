package store

import (
	"context"
	"fmt"

	"github.com/wablast/blast/internal/backend"
	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/status"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SetLabels replaces the label collection with the backend's truth.
func (s *Store) SetLabels(labels []backend.Label) {
	s.mu.Lock()
	s.labels = cloneLabels(labels)
	s.mu.Unlock()
	s.persist()
	s.publish("label.replaced", len(labels))
}

// SetActiveLabel sets the label filter (a label id, or empty for all).
func (s *Store) SetActiveLabel(labelID string) {
	s.mu.Lock()
	s.activeLabel = labelID
	s.mu.Unlock()
	s.persist()
}

// CreateLabel creates a label through the backend and appends the server
// record locally. Confirm-first, like adds.
func (s *Store) CreateLabel(ctx context.Context, name, color, ownerKey string) error {
	if name == "" {
		s.notify(bus.NoticeError, "label name is required")
		return ErrMissingLabelName
	}
	if color == "" {
		color = DefaultLabelColor
	}

	s.status.Loading(status.Labels)
	label, err := s.api.CreateLabel(ctx, name, color, ownerKey)
	if err != nil {
		s.logger.Error("create label failed", zap.Error(err), zap.String("name", name))
		s.status.Fail(status.Labels)
		s.notify(bus.NoticeError, "could not create label, please try again")
		return err
	}

	s.mu.Lock()
	s.labels = append(s.labels, *label)
	s.mu.Unlock()
	s.persist()

	s.status.Succeed(status.Labels)
	s.publish("label.created", label.ID)
	s.notify(bus.NoticeSuccess, fmt.Sprintf("label %q created", label.Name))
	s.record(ownerKey, fmt.Sprintf("label %q created", label.Name))
	return nil
}

// DeleteLabel removes a label, cascading the detach: every member contact
// is detached on the backend (in parallel) and locally before the label
// record itself is deleted.
func (s *Store) DeleteLabel(ctx context.Context, labelID, ownerKey string) error {
	if labelID == "" {
		return ErrUnknownLabel
	}

	s.mu.RLock()
	var members []string
	found := false
	for _, l := range s.labels {
		if l.ID == labelID {
			members = cloneStrings(l.ContactIDs)
			found = true
			break
		}
	}
	s.mu.RUnlock()

	if !found {
		s.notify(bus.NoticeError, "label not found")
		return ErrUnknownLabel
	}

	s.status.Loading(status.Labels)

	g, gctx := errgroup.WithContext(ctx)
	for _, contactID := range members {
		contactID := contactID
		g.Go(func() error {
			return s.api.MassDeassignLabel(gctx, []string{contactID}, labelID, ownerKey)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("label detach cascade failed", zap.Error(err), zap.String("label_id", labelID))
		s.status.Fail(status.Labels)
		s.notify(bus.NoticeError, "could not delete label, please try again")
		return err
	}

	s.mu.Lock()
	for i := range s.contacts {
		s.contacts[i].Labels = without(s.contacts[i].Labels, []string{labelID})
	}
	kept := s.labels[:0:0]
	for _, l := range s.labels {
		if l.ID != labelID {
			kept = append(kept, l)
		}
	}
	s.labels = kept
	s.mu.Unlock()
	s.persist()

	if err := s.api.DeleteLabel(ctx, labelID); err != nil {
		// Members are already detached; accepted window until refresh.
		s.logger.Error("delete label failed", zap.Error(err), zap.String("label_id", labelID))
		s.status.Fail(status.Labels)
		s.notify(bus.NoticeError, "could not delete label, please try again")
		return err
	}

	s.status.Succeed(status.Labels)
	s.publish("label.deleted", labelID)
	s.notify(bus.NoticeSuccess, "label deleted")
	s.record(ownerKey, "label deleted")
	return nil
}

// ToggleLabel flips one contact/label pair. The toggle's outcome depends
// on server-side truth, so no optimistic guess is made: both sides of the
// mirror are reconciled from the backend's authoritative mode in a single
// state update.
func (s *Store) ToggleLabel(ctx context.Context, contactID, labelID, ownerKey string) error {
	if contactID == "" || labelID == "" {
		return ErrUnknownContact
	}

	mode, err := s.api.ToggleLabel(ctx, contactID, labelID, ownerKey)
	if err != nil {
		s.logger.Error("toggle label failed", zap.Error(err),
			zap.String("contact_id", contactID), zap.String("label_id", labelID))
		s.notify(bus.NoticeError, "could not update label, please try again")
		return err
	}

	s.mu.Lock()
	for i := range s.labels {
		if s.labels[i].ID != labelID {
			continue
		}
		switch mode {
		case backend.ModeAttached:
			s.labels[i].ContactIDs = union(s.labels[i].ContactIDs, []string{contactID})
		case backend.ModeDetached:
			s.labels[i].ContactIDs = without(s.labels[i].ContactIDs, []string{contactID})
		}
	}
	for i := range s.contacts {
		if s.contacts[i].ID != contactID {
			continue
		}
		switch mode {
		case backend.ModeAttached:
			s.contacts[i].Labels = union(s.contacts[i].Labels, []string{labelID})
		case backend.ModeDetached:
			s.contacts[i].Labels = without(s.contacts[i].Labels, []string{labelID})
		}
	}
	s.mu.Unlock()
	s.persist()

	s.publish("label.toggled", map[string]string{"contact_id": contactID, "label_id": labelID, "mode": string(mode)})
	s.record(ownerKey, "label toggled")
	return nil
}
