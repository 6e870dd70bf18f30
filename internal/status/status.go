// Package status tracks the ephemeral per-operation-family flags the UI
// reads to paint spinners and checkmarks. Flags are advisory decoration,
// never a gating mechanism: every flag falls back to Idle on a fixed
// timer regardless of whether the underlying request is still in flight.
package status

import (
	"sync"
	"time"

	"github.com/wablast/blast/internal/bus"
)

// Flag is the value of one status family.
type Flag string

const (
	Idle    Flag = ""
	Loading Flag = "loading"
	Success Flag = "success"
	Error   Flag = "error"
)

// Family identifies a group of mutating operations sharing one flag.
type Family string

const (
	Contacts Family = "contacts"
	Labels   Family = "labels"
	Message  Family = "message"
	Compose  Family = "compose"
)

// DefaultTTL is how long a terminal flag survives before resetting to
// Idle. Matches the dashboard's 15-second auto-clear.
const DefaultTTL = 15 * time.Second

// Set holds the flag for every family.
type Set struct {
	mu     sync.Mutex
	flags  map[Family]Flag
	timers map[Family]*time.Timer
	ttl    time.Duration
	bus    *bus.Bus
}

// Change is the payload for "status.changed" events.
type Change struct {
	Family Family
	Flag   Flag
}

// Option configures a Set.
type Option func(*Set)

// WithTTL overrides the auto-reset delay. Used by tests.
func WithTTL(d time.Duration) Option {
	return func(s *Set) { s.ttl = d }
}

// NewSet creates a status set publishing changes on b. b may be nil.
func NewSet(b *bus.Bus, opts ...Option) *Set {
	s := &Set{
		flags:  make(map[Family]Flag),
		timers: make(map[Family]*time.Timer),
		ttl:    DefaultTTL,
		bus:    b,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the current flag for a family.
func (s *Set) Get(f Family) Flag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[f]
}

// Loading marks a family as loading. Loading does not expire on its own;
// it is replaced by Succeed or Fail, which do.
func (s *Set) Loading(f Family) { s.set(f, Loading, false) }

// Succeed marks a family successful and schedules the reset to Idle.
func (s *Set) Succeed(f Family) { s.set(f, Success, true) }

// Fail marks a family errored and schedules the reset to Idle.
func (s *Set) Fail(f Family) { s.set(f, Error, true) }

// Reset immediately returns a family to Idle.
func (s *Set) Reset(f Family) { s.set(f, Idle, false) }

func (s *Set) set(f Family, v Flag, expire bool) {
	s.mu.Lock()
	if t := s.timers[f]; t != nil {
		t.Stop()
		delete(s.timers, f)
	}
	s.flags[f] = v
	if expire {
		s.timers[f] = time.AfterFunc(s.ttl, func() { s.expire(f, v) })
	}
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(bus.Event{Kind: "status.changed", Payload: Change{Family: f, Flag: v}})
	}
}

// expire resets the family only if the flag it was scheduled for is still
// current, so a newer transition is not clobbered by a stale timer.
func (s *Set) expire(f Family, was Flag) {
	s.mu.Lock()
	if s.flags[f] != was {
		s.mu.Unlock()
		return
	}
	s.flags[f] = Idle
	delete(s.timers, f)
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(bus.Event{Kind: "status.changed", Payload: Change{Family: f, Flag: Idle}})
	}
}
