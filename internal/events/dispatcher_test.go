package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherInvokesSubscribersInOrder(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var calls []string
	dispatcher.Subscribe(EventEmailTicketCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return nil
	})
	dispatcher.Subscribe(EventEmailTicketCreated, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	dispatcher.Subscribe(EventEmailCommentAppended, func(ctx context.Context, e Event) error {
		calls = append(calls, "other-type")
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventEmailTicketCreated}); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v", calls)
	}
}

func TestDispatcherFailingHandlerDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	boom := errors.New("boom")
	ran := false
	dispatcher.Subscribe(EventEmailTicketCreated, func(ctx context.Context, e Event) error {
		return boom
	})
	dispatcher.Subscribe(EventEmailTicketCreated, func(ctx context.Context, e Event) error {
		ran = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventEmailTicketCreated})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
	if !ran {
		t.Error("second handler must still run")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventEmailDuplicateFound}); err != nil {
		t.Fatal(err)
	}
}
