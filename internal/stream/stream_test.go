package stream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"beacon/internal/event"
	"beacon/internal/stream"
)

func publish(t *testing.T, b *stream.Buffer, topic string) {
	t.Helper()
	if err := b.Receive(context.Background(), event.New(topic, "msg")); err != nil {
		t.Fatalf("receive returned error: %v", err)
	}
}

func TestFetchReturnsEntriesAfterSequence(t *testing.T) {
	b := stream.NewBuffer(8)
	publish(t, b, "one")
	publish(t, b, "two")
	publish(t, b, "three")

	entries, next, err := b.Fetch(context.Background(), 1, 10, false)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after sequence 1, got %d", len(entries))
	}
	if entries[0].Record.Topic != "two" || entries[1].Record.Topic != "three" {
		t.Fatalf("unexpected entries: %v", entries)
	}
	if next != 3 {
		t.Fatalf("expected next sequence 3, got %d", next)
	}
}

func TestFetchHonorsLimit(t *testing.T) {
	b := stream.NewBuffer(8)
	for _, topic := range []string{"a", "b", "c", "d"} {
		publish(t, b, topic)
	}
	entries, _, err := b.Fetch(context.Background(), 0, 2, false)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit of 2 entries, got %d", len(entries))
	}
	if entries[0].Record.Topic != "a" {
		t.Fatalf("expected oldest entry first, got %q", entries[0].Record.Topic)
	}
}

func TestEvictionKeepsNewestEntries(t *testing.T) {
	b := stream.NewBuffer(2)
	publish(t, b, "a")
	publish(t, b, "b")
	publish(t, b, "c")

	entries, _ := b.Tail(10)
	if len(entries) != 2 {
		t.Fatalf("expected capacity-bounded tail of 2, got %d", len(entries))
	}
	if entries[0].Record.Topic != "b" || entries[1].Record.Topic != "c" {
		t.Fatalf("expected oldest entry evicted, got %v", entries)
	}
	if got := b.FirstSequence(); got != 2 {
		t.Fatalf("expected first buffered sequence 2, got %d", got)
	}
}

func TestFetchWaitWakesOnNewEntry(t *testing.T) {
	b := stream.NewBuffer(8)
	done := make(chan struct{})
	var entries []stream.Entry
	var err error
	go func() {
		defer close(done)
		entries, _, err = b.Fetch(context.Background(), 0, 10, true)
	}()

	time.Sleep(10 * time.Millisecond)
	publish(t, b, "wake")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("fetch did not wake after publish")
	}
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Record.Topic != "wake" {
		t.Fatalf("expected the published entry, got %v", entries)
	}
}

func TestFetchWaitStopsOnContextCancel(t *testing.T) {
	b := stream.NewBuffer(8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := b.Fetch(ctx, 0, 10, true)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("fetch did not observe cancellation")
	}
}
