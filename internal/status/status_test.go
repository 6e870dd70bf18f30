package status

import (
	"testing"
	"time"

	"github.com/wablast/blast/internal/bus"
)

func TestInitialFlagsIdle(t *testing.T) {
	s := NewSet(nil)
	for _, f := range []Family{Contacts, Labels, Message, Compose} {
		if got := s.Get(f); got != Idle {
			t.Errorf("Get(%s) = %q, want Idle", f, got)
		}
	}
}

func TestLoadingDoesNotExpire(t *testing.T) {
	s := NewSet(nil, WithTTL(20*time.Millisecond))
	s.Loading(Labels)
	time.Sleep(60 * time.Millisecond)
	if got := s.Get(Labels); got != Loading {
		t.Errorf("Get(Labels) = %q, want Loading", got)
	}
}

func TestTerminalFlagsExpireToIdle(t *testing.T) {
	s := NewSet(nil, WithTTL(20*time.Millisecond))

	s.Succeed(Contacts)
	s.Fail(Message)

	if got := s.Get(Contacts); got != Success {
		t.Fatalf("Get(Contacts) = %q, want Success", got)
	}
	if got := s.Get(Message); got != Error {
		t.Fatalf("Get(Message) = %q, want Error", got)
	}

	time.Sleep(80 * time.Millisecond)

	if got := s.Get(Contacts); got != Idle {
		t.Errorf("Get(Contacts) after TTL = %q, want Idle", got)
	}
	if got := s.Get(Message); got != Idle {
		t.Errorf("Get(Message) after TTL = %q, want Idle", got)
	}
}

func TestStaleTimerDoesNotClobberNewFlag(t *testing.T) {
	s := NewSet(nil, WithTTL(30*time.Millisecond))

	s.Succeed(Labels)
	time.Sleep(10 * time.Millisecond)
	// Start a new cycle before the first timer fires.
	s.Loading(Labels)
	time.Sleep(50 * time.Millisecond)

	if got := s.Get(Labels); got != Loading {
		t.Errorf("Get(Labels) = %q, want Loading (stale timer must not reset)", got)
	}
}

func TestChangesPublished(t *testing.T) {
	b := bus.New()
	ch, cancel := b.Subscribe("status.", 10)
	defer cancel()

	s := NewSet(b)
	s.Loading(Contacts)

	select {
	case evt := <-ch:
		change, ok := evt.Payload.(Change)
		if !ok {
			t.Fatalf("payload type = %T", evt.Payload)
		}
		if change.Family != Contacts || change.Flag != Loading {
			t.Errorf("change = %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for status event")
	}
}
