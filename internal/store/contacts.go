package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/wablast/blast/internal/backend"
	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/status"
	"github.com/wablast/blast/internal/vcf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SetContacts replaces the contact collection with the backend's truth,
// used after the initial fetch and on every refresh.
func (s *Store) SetContacts(contacts []backend.Contact) {
	s.mu.Lock()
	s.contacts = cloneContacts(contacts)
	s.mu.Unlock()
	s.persist()
	s.publish("contact.replaced", len(contacts))
}

// SelectContact toggles phone's membership in the selection set.
func (s *Store) SelectContact(phone string) {
	s.mu.Lock()
	found := false
	for _, p := range s.selected {
		if p == phone {
			found = true
			break
		}
	}
	if found {
		s.selected = without(s.selected, []string{phone})
	} else {
		s.selected = append(s.selected, phone)
	}
	s.mu.Unlock()
	s.persist()
}

// AddContact creates a contact through the backend and appends the
// canonical record locally. Adds are confirmed-first: duplicate detection
// needs the server, so nothing is touched until it answers. A duplicate
// phone surfaces an informational notice and is not an error. isBulk
// suppresses the per-contact notice and audit entry during imports.
func (s *Store) AddContact(ctx context.Context, ownerKey, name, phone string, isBulk bool) error {
	if phone == "" {
		s.notify(bus.NoticeError, "phone number is required")
		return ErrMissingPhone
	}

	contact, err := s.api.AddContact(ctx, ownerKey, name, phone)
	if errors.Is(err, backend.ErrDuplicateContact) {
		if !isBulk {
			s.notify(bus.NoticeInfo, fmt.Sprintf("%s already exists", displayNameFor(name, phone)))
		}
		return nil
	}
	if err != nil {
		s.logger.Error("add contact failed", zap.Error(err), zap.String("phone", phone))
		s.notify(bus.NoticeError, "could not add contact, please try again")
		return err
	}

	s.mu.Lock()
	s.contacts = append(s.contacts, *contact)
	s.mu.Unlock()
	s.persist()
	s.publish("contact.added", contact.Phone)

	if !isBulk {
		s.notify(bus.NoticeSuccess, fmt.Sprintf("%s added", contact.DisplayName()))
		s.record(ownerKey, "contact added")
	}
	return nil
}

// DeleteContact removes one contact. The cascade walks the label
// direction first: every label carrying the contact is detached on the
// backend (in parallel) and locally, then the contact record itself is
// deleted. A failure after the detach phase leaves remote label state
// already cleaned; that window is accepted and repaired by Refresh.
func (s *Store) DeleteContact(ctx context.Context, ownerKey, phone string) error {
	s.mu.RLock()
	var target *backend.Contact
	for i := range s.contacts {
		if s.contacts[i].Phone == phone {
			c := s.contacts[i]
			c.Labels = cloneStrings(c.Labels)
			target = &c
			break
		}
	}
	var affected []string
	if target != nil {
		for _, l := range s.labels {
			if l.HasContact(target.ID) {
				affected = append(affected, l.ID)
			}
		}
	}
	s.mu.RUnlock()

	if target == nil {
		s.notify(bus.NoticeError, "contact not found")
		return ErrUnknownContact
	}

	s.status.Loading(status.Contacts)

	g, gctx := errgroup.WithContext(ctx)
	for _, labelID := range affected {
		labelID := labelID
		g.Go(func() error {
			return s.api.MassDeassignLabel(gctx, []string{target.ID}, labelID, ownerKey)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("detach cascade failed", zap.Error(err), zap.String("phone", phone))
		s.status.Fail(status.Contacts)
		s.notify(bus.NoticeError, "could not delete contact, please try again")
		return err
	}

	s.mu.Lock()
	for i := range s.labels {
		if contains(affected, s.labels[i].ID) {
			s.labels[i].ContactIDs = without(s.labels[i].ContactIDs, []string{target.ID})
		}
	}
	s.mu.Unlock()
	s.persist()

	if err := s.api.DeleteContact(ctx, ownerKey, phone); err != nil {
		// Labels are already detached remotely; accepted inconsistency
		// window until the next refresh.
		s.logger.Error("delete contact failed", zap.Error(err), zap.String("phone", phone))
		s.status.Fail(status.Contacts)
		s.notify(bus.NoticeError, "could not delete contact, please try again")
		return err
	}

	s.mu.Lock()
	kept := s.contacts[:0:0]
	for _, c := range s.contacts {
		if c.Phone != phone {
			kept = append(kept, c)
		}
	}
	s.contacts = kept
	s.selected = without(s.selected, []string{phone})
	s.mu.Unlock()
	s.persist()

	s.status.Succeed(status.Contacts)
	s.publish("contact.deleted", phone)
	s.notify(bus.NoticeSuccess, fmt.Sprintf("%s deleted", target.DisplayName()))
	s.record(ownerKey, "contact deleted")
	return nil
}

// ImportVCF adds every card in r whose phone is not already loaded, via
// the confirmed-first add path, paced by the import limiter.
func (s *Store) ImportVCF(ctx context.Context, ownerKey string, r io.Reader) (int, error) {
	cards, err := vcf.Parse(r)
	if err != nil {
		s.notify(bus.NoticeError, "could not read the vcf file")
		return 0, err
	}

	s.status.Loading(status.Contacts)
	added := 0
	for _, card := range cards {
		if s.hasPhone(card.Phone) {
			continue
		}
		if err := s.importLimiter.Wait(ctx); err != nil {
			s.status.Fail(status.Contacts)
			return added, err
		}
		if err := s.AddContact(ctx, ownerKey, card.Name, card.Phone, true); err != nil {
			s.status.Fail(status.Contacts)
			return added, err
		}
		added++
	}

	s.status.Succeed(status.Contacts)
	s.notify(bus.NoticeSuccess, fmt.Sprintf("%d contacts imported", added))
	s.record(ownerKey, fmt.Sprintf("%d contacts imported from vcf", added))
	return added, nil
}

// ScrapeContacts pulls phone numbers from the linked WhatsApp account and
// adds the ones not already loaded.
func (s *Store) ScrapeContacts(ctx context.Context, ownerKey string) error {
	return s.scrape(ctx, ownerKey, s.api.ScrapeContacts, "contacts scraped & saved")
}

// ScrapeGroups pulls group participant numbers and adds the new ones.
func (s *Store) ScrapeGroups(ctx context.Context, ownerKey string) error {
	return s.scrape(ctx, ownerKey, s.api.ScrapeGroups, "group contacts scraped & saved")
}

func (s *Store) scrape(ctx context.Context, ownerKey string, fetch func(context.Context, string) ([]string, error), auditMsg string) error {
	userID := s.UserID()
	if userID == "" {
		s.notify(bus.NoticeError, "connect a session before scraping")
		return backend.ErrNotConnected
	}

	s.status.Loading(status.Contacts)
	phones, err := fetch(ctx, userID)
	if err != nil {
		s.logger.Error("scrape failed", zap.Error(err))
		s.status.Fail(status.Contacts)
		s.notify(bus.NoticeError, "could not scrape contacts, please try again")
		return err
	}

	seen := make(map[string]struct{}, len(phones))
	for _, phone := range phones {
		if _, dup := seen[phone]; dup || phone == "" {
			continue
		}
		seen[phone] = struct{}{}
		if s.hasPhone(phone) {
			continue
		}
		if err := s.importLimiter.Wait(ctx); err != nil {
			s.status.Fail(status.Contacts)
			return err
		}
		// Scraped numbers have no display name yet; the phone doubles as one.
		if err := s.AddContact(ctx, ownerKey, phone, phone, true); err != nil {
			s.status.Fail(status.Contacts)
			return err
		}
	}

	s.status.Succeed(status.Contacts)
	s.record(ownerKey, auditMsg)
	return nil
}

func (s *Store) hasPhone(phone string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contacts {
		if c.Phone == phone {
			return true
		}
	}
	return false
}

func displayNameFor(name, phone string) string {
	if name != "" {
		return name
	}
	return phone
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
