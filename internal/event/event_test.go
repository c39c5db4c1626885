package event_test

import (
	"testing"

	"beacon/internal/event"
)

func TestNewAssignsIdentityAndTimestamp(t *testing.T) {
	rec := event.New("queue.started", "processing began")
	if rec.ID == "" {
		t.Fatalf("expected a generated record ID")
	}
	if rec.PublishedAt.IsZero() {
		t.Fatalf("expected a publish timestamp")
	}
	other := event.New("queue.started", "processing began")
	if rec.ID == other.ID {
		t.Fatalf("expected distinct IDs for distinct records")
	}
}

func TestWithFieldDoesNotMutateOriginal(t *testing.T) {
	rec := event.New("disc.detected", "found disc")
	tagged := rec.WithField("drive", "/dev/sr0")
	if len(rec.Fields) != 0 {
		t.Fatalf("expected original record untouched, got fields %v", rec.Fields)
	}
	if tagged.Fields["drive"] != "/dev/sr0" {
		t.Fatalf("expected field to be set on the copy, got %v", tagged.Fields)
	}
}

func TestMatches(t *testing.T) {
	rec := event.New("queue.item.completed", "done")
	tests := []struct {
		topic string
		want  bool
	}{
		{"", true},
		{"queue.item.completed", true},
		{"queue.item", false},
		{"queue.*", true},
		{"queue.item.*", true},
		{"encode.*", false},
	}
	for _, tc := range tests {
		if got := rec.Matches(tc.topic); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.topic, got, tc.want)
		}
	}
}
