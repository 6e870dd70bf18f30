// Package store owns the client-side copy of the blast state: the
// contact and label collections, the selection set, the message draft and
// the session sub-state. It is the single writer; surfaces read snapshots
// and dispatch actions, and every mutation flows through its methods.
//
// The store is optimistic where the target state is known in advance
// (mass assign/deassign) and confirm-first where it is not (adds,
// creates, single toggles). The remote backend stays the source of truth;
// on a failed bulk call the store restores the exact pre-operation
// snapshot, and a full Refresh repairs any partial-cascade drift.
package store

import (
	"errors"
	"sync"

	"github.com/wablast/blast/internal/backend"
	"github.com/wablast/blast/internal/bus"
	"github.com/wablast/blast/internal/snapshot"
	"github.com/wablast/blast/internal/status"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Validation errors, raised before any network call.
var (
	ErrMissingPhone     = errors.New("phone number is required")
	ErrMissingLabelName = errors.New("label name is required")
	ErrUnknownContact   = errors.New("contact not loaded")
	ErrUnknownLabel     = errors.New("label not loaded")
	ErrDraftIncomplete  = errors.New("title, message and selected contacts are required")
)

// DefaultLabelColor is applied when a label is created without a color.
const DefaultLabelColor = "#3b82f6"

// Auditor receives fire-and-forget audit entries. Implementations must
// never block; delivery failure is their own concern.
type Auditor interface {
	Record(userEmail, action string)
}

// Saver persists a best-effort snapshot of the whole store state.
type Saver interface {
	Save(*snapshot.State) error
}

// ConnectionState tracks the socket-server session.
type ConnectionState string

const (
	Disconnected ConnectionState = "disconnected"
	Connecting   ConnectionState = "connecting"
	Connected    ConnectionState = "connected"
)

// Store is the single-writer state container for one user's blast data.
type Store struct {
	api    *backend.Client
	bus    *bus.Bus
	status *status.Set
	audit  Auditor
	saver  Saver
	logger *zap.Logger

	// importLimiter paces the per-contact add calls issued by scrape and
	// VCF import so a large import does not hammer the backend.
	importLimiter *rate.Limiter

	mu          sync.RWMutex
	contacts    []backend.Contact
	labels      []backend.Label
	selected    []string
	message     string
	title       string
	searchTerm  string
	activeLabel string
	conn        ConnectionState
	userID      string
	userEmail   string
	qrCodeURL   string
}

// Option configures a Store.
type Option func(*Store)

// WithAuditor attaches the activity audit sink.
func WithAuditor(a Auditor) Option {
	return func(s *Store) { s.audit = a }
}

// WithSaver attaches the snapshot persistence sink.
func WithSaver(sv Saver) Option {
	return func(s *Store) { s.saver = sv }
}

// WithImportRate overrides the per-contact import pacing. Used by tests.
func WithImportRate(l *rate.Limiter) Option {
	return func(s *Store) { s.importLimiter = l }
}

// New creates a store. b and st are required; audit and saver default to
// no-ops via options.
func New(api *backend.Client, b *bus.Bus, st *status.Set, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		api:           api,
		bus:           b,
		status:        st,
		logger:        logger,
		conn:          Disconnected,
		importLimiter: rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status exposes the status flag set for surfaces.
func (s *Store) Status() *status.Set { return s.status }

// Contacts returns a copy of the contact collection.
func (s *Store) Contacts() []backend.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContacts(s.contacts)
}

// Labels returns a copy of the label collection.
func (s *Store) Labels() []backend.Label {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLabels(s.labels)
}

// Selected returns a copy of the selection set, in selection order.
func (s *Store) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneStrings(s.selected)
}

// Message returns the current draft body.
func (s *Store) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// Title returns the current draft title.
func (s *Store) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// SearchTerm returns the active search filter.
func (s *Store) SearchTerm() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchTerm
}

// ActiveLabel returns the active label filter (a label id, or empty).
func (s *Store) ActiveLabel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLabel
}

// Connection returns the session connection state.
func (s *Store) Connection() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// UserID returns the socket-server session id, empty when disconnected.
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// UserEmail returns the configured owner key.
func (s *Store) UserEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userEmail
}

// QRCodeURL returns the QR linking payload from the last connect.
func (s *Store) QRCodeURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.qrCodeURL
}

// SetMessage replaces the draft body.
func (s *Store) SetMessage(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
	s.persist()
}

// SetTitle replaces the draft title.
func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
	s.persist()
}

// SetUserEmail sets the owner key used for session and audit calls.
func (s *Store) SetUserEmail(email string) {
	s.mu.Lock()
	s.userEmail = email
	s.mu.Unlock()
	s.persist()
}

// Restore loads a persisted snapshot into the store. Called once at
// startup before any surface attaches.
func (s *Store) Restore(st *snapshot.State) {
	if st == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = cloneContacts(st.Contacts)
	s.labels = cloneLabels(st.Labels)
	s.selected = cloneStrings(st.Selected)
	s.message = st.Message
	s.title = st.Title
	s.userID = st.UserID
	s.userEmail = st.UserEmail
	s.qrCodeURL = st.QRCodeURL
	s.activeLabel = st.ActiveLabel
	s.searchTerm = st.SearchTerm
	if s.userID != "" {
		s.conn = Connected
	}
}

// persist schedules a best-effort snapshot save. Not transactional with
// any network call; a save failure is logged and otherwise ignored.
func (s *Store) persist() {
	if s.saver == nil {
		return
	}
	s.mu.RLock()
	st := &snapshot.State{
		Contacts:    cloneContacts(s.contacts),
		Labels:      cloneLabels(s.labels),
		Selected:    cloneStrings(s.selected),
		Message:     s.message,
		Title:       s.title,
		UserID:      s.userID,
		UserEmail:   s.userEmail,
		QRCodeURL:   s.qrCodeURL,
		ActiveLabel: s.activeLabel,
		SearchTerm:  s.searchTerm,
	}
	s.mu.RUnlock()

	if err := s.saver.Save(st); err != nil {
		s.logger.Warn("snapshot save failed", zap.Error(err))
	}
}

func (s *Store) notify(level bus.NoticeLevel, text string) {
	if s.bus != nil {
		s.bus.Notify(level, text)
	}
}

func (s *Store) publish(kind string, payload any) {
	if s.bus != nil {
		s.bus.Publish(bus.Event{Kind: kind, Payload: payload})
	}
}

func (s *Store) record(userEmail, action string) {
	if s.audit != nil {
		s.audit.Record(userEmail, action)
	}
}

func cloneContacts(in []backend.Contact) []backend.Contact {
	out := make([]backend.Contact, len(in))
	for i, c := range in {
		c.Labels = cloneStrings(c.Labels)
		out[i] = c
	}
	return out
}

func cloneLabels(in []backend.Label) []backend.Label {
	out := make([]backend.Label, len(in))
	for i, l := range in {
		l.ContactIDs = cloneStrings(l.ContactIDs)
		out[i] = l
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// union appends the members of add that base does not already contain,
// preserving base order. Set semantics keep every merge idempotent.
func union(base, add []string) []string {
	seen := make(map[string]struct{}, len(base))
	out := cloneStrings(base)
	for _, v := range base {
		seen[v] = struct{}{}
	}
	for _, v := range add {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// without filters every member of drop out of base.
func without(base, drop []string) []string {
	dropSet := make(map[string]struct{}, len(drop))
	for _, v := range drop {
		dropSet[v] = struct{}{}
	}
	out := base[:0:0]
	for _, v := range base {
		if _, ok := dropSet[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
