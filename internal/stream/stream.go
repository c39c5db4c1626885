// Package stream keeps a bounded, sequence-numbered window of recently
// published records so late-joining consumers can catch up past the hub's
// single-value replay.
package stream

import (
	"context"
	"sync"

	"beacon/internal/event"
)

// Entry is a buffered record tagged with its buffer sequence number.
type Entry struct {
	Sequence uint64       `json:"seq"`
	Record   event.Record `json:"record"`
}

// Buffer retains the most recent records and wakes waiters when new ones
// arrive. It implements hub.Subscriber[event.Record], so it can simply be
// registered on a hub.
type Buffer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	entries  []Entry
	nextSeq  uint64
}

const defaultCapacity = 512

// NewBuffer constructs a buffer holding up to capacity records.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	b := &Buffer{capacity: capacity}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Receive appends the record, evicting the oldest entry when full.
func (b *Buffer) Receive(_ context.Context, rec event.Record) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	b.nextSeq++
	if len(b.entries) == b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:b.capacity-1]
	}
	b.entries = append(b.entries, Entry{Sequence: b.nextSeq, Record: rec})
	b.cond.Broadcast()
	b.mu.Unlock()
	return nil
}

// Fetch returns up to limit entries with sequence greater than since. When
// wait is true and nothing newer is buffered, Fetch blocks until an entry
// arrives or ctx ends.
func (b *Buffer) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]Entry, uint64, error) {
	if b == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > b.capacity {
		limit = b.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				b.cond.Broadcast()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		entries, next := b.windowLocked(since, limit)
		if len(entries) > 0 || !wait {
			return entries, next, contextError(ctx)
		}
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
		b.cond.Wait()
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
	}
}

// Tail returns the most recent limit entries without blocking.
func (b *Buffer) Tail(limit int) ([]Entry, uint64) {
	if b == nil {
		return nil, 0
	}
	if limit <= 0 || limit > b.capacity {
		limit = b.capacity
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return nil, b.nextSeq
	}
	start := len(b.entries) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Entry, len(b.entries)-start)
	copy(out, b.entries[start:])
	return out, b.nextSeq
}

// FirstSequence reports the smallest sequence number still buffered.
func (b *Buffer) FirstSequence() uint64 {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return b.nextSeq
	}
	return b.entries[0].Sequence
}

func (b *Buffer) windowLocked(since uint64, limit int) ([]Entry, uint64) {
	if len(b.entries) == 0 {
		return nil, b.nextSeq
	}
	startIdx := -1
	for i, ent := range b.entries {
		if ent.Sequence > since {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return nil, b.nextSeq
	}
	end := startIdx + limit
	if end > len(b.entries) {
		end = len(b.entries)
	}
	out := make([]Entry, end-startIdx)
	copy(out, b.entries[startIdx:end])
	return out, b.nextSeq
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
