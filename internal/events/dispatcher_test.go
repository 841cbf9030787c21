package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []EventType
	d.Subscribe(EventComplaintSubmitted, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventTrackerReset, func(_ context.Context, e Event) error {
		t.Fatalf("reset handler received %s", e.Type)
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventComplaintSubmitted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 1 || got[0] != EventComplaintSubmitted {
		t.Fatalf("got %v", got)
	}
}

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	calls := 0
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventTicketStatusChanged, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketStatusChanged})
	if !errors.Is(err, boom) {
		t.Fatalf("Publish error = %v, want boom", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
