// Package event defines the record type beacon's own tooling publishes
// through the hub. The hub itself stays generic; this is the concrete value
// shared by the journal, the stream buffer, and the CLI.
package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is a single published event.
type Record struct {
	ID          string            `json:"id"`
	Topic       string            `json:"topic"`
	Message     string            `json:"message"`
	Fields      map[string]string `json:"fields,omitempty"`
	PublishedAt time.Time         `json:"published_at"`
}

// New builds a record with a fresh identifier and a UTC timestamp.
func New(topic, message string) Record {
	return Record{
		ID:          uuid.NewString(),
		Topic:       strings.TrimSpace(topic),
		Message:     strings.TrimSpace(message),
		PublishedAt: time.Now().UTC(),
	}
}

// WithField returns a copy of the record carrying an extra key/value pair.
func (r Record) WithField(key, value string) Record {
	fields := make(map[string]string, len(r.Fields)+1)
	for k, v := range r.Fields {
		fields[k] = v
	}
	fields[key] = value
	r.Fields = fields
	return r
}

// Matches reports whether the record belongs to topic. An empty topic
// matches everything; a trailing ".*" matches the topic prefix.
func (r Record) Matches(topic string) bool {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return true
	}
	if prefix, ok := strings.CutSuffix(topic, ".*"); ok {
		return r.Topic == prefix || strings.HasPrefix(r.Topic, prefix+".")
	}
	return r.Topic == topic
}
