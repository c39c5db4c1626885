package journal_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"beacon/internal/event"
	"beacon/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close journal: %v", err)
		}
	})
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := event.New("disc.detected", "found disc").WithField("drive", "/dev/sr0")
	second := event.New("queue.started", "processing began")
	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if err := store.Receive(ctx, second); err != nil {
		t.Fatalf("receive second: %v", err)
	}

	entries, err := store.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Record.Topic != "queue.started" {
		t.Fatalf("expected newest entry first, got %q", entries[0].Record.Topic)
	}
	if entries[1].Record.Fields["drive"] != "/dev/sr0" {
		t.Fatalf("expected fields round-trip, got %v", entries[1].Record.Fields)
	}
	if entries[1].Record.PublishedAt.IsZero() {
		t.Fatalf("expected publish timestamp to round-trip")
	}
}

func TestAppendIgnoresDuplicateIDs(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec := event.New("queue.started", "processing began")
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("duplicate append should be a no-op, got %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 journaled event, got %d", count)
	}
}

func TestRecentFiltersByTopic(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, event.New("encode.progress", "tick")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := store.Append(ctx, event.New("queue.started", "go")); err != nil {
		t.Fatalf("append: %v", err)
	}

	entries, err := store.Recent(ctx, "encode.progress", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 filtered entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Record.Topic != "encode.progress" {
			t.Fatalf("unexpected topic %q", entry.Record.Topic)
		}
	}
}

func TestTopicCountsOrderedByVolume(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Append(ctx, event.New("a.minor", "x")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		if err := store.Append(ctx, event.New("b.major", "x")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	counts, err := store.TopicCounts(ctx)
	if err != nil {
		t.Fatalf("topic counts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(counts))
	}
	if counts[0].Topic != "b.major" || counts[0].Count != 5 {
		t.Fatalf("expected b.major first with 5, got %+v", counts[0])
	}
}

func TestOpenRefusesSecondWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	first, err := journal.Open(path)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	defer first.Close()

	if _, err := journal.Open(path); err == nil {
		t.Fatalf("expected second open on a locked journal to fail")
	}
}

func TestAppendFillsMissingTimestamp(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec := event.Record{ID: "fixed-id", Topic: "bare", Message: "no timestamp"}
	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, err := store.Recent(ctx, "bare", 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Record.PublishedAt.IsZero() || time.Since(entries[0].Record.PublishedAt) > time.Minute {
		t.Fatalf("expected a fresh timestamp, got %v", entries[0].Record.PublishedAt)
	}
}
