package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("contact.", 10)
	defer cancel()

	b.Publish(Event{Kind: "contact.added", Payload: "111"})

	select {
	case evt := <-ch:
		if evt.Kind != "contact.added" {
			t.Errorf("kind = %q, want contact.added", evt.Kind)
		}
		if evt.At.IsZero() {
			t.Error("At not stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPrefixFiltering(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("label.", 10)
	defer cancel()

	b.Publish(Event{Kind: "contact.added"})
	b.Publish(Event{Kind: "label.created"})

	select {
	case evt := <-ch:
		if evt.Kind != "label.created" {
			t.Errorf("kind = %q, want label.created", evt.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifyKinds(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("notice.error", 1)
	defer cancel()

	b.Notify(NoticeInfo, "hello")
	b.Notify(NoticeError, "boom")

	evt := <-ch
	n, ok := evt.Payload.(Notice)
	if !ok {
		t.Fatalf("payload type = %T", evt.Payload)
	}
	if n.Level != NoticeError || n.Text != "boom" {
		t.Errorf("notice = %+v", n)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("contact.", 10)
	cancel()

	b.Publish(Event{Kind: "contact.added"})

	select {
	case evt := <-ch:
		t.Errorf("received event after cancel: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropWhenSubscriberFull(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("x.", 1)
	defer cancel()

	b.Publish(Event{Kind: "x.one"})
	b.Publish(Event{Kind: "x.two"}) // dropped

	evt := <-ch
	if evt.Kind != "x.one" {
		t.Errorf("kind = %q, want x.one", evt.Kind)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected second event: %v", evt)
	default:
	}
}
