package hub

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// Hub maintains an ordered subscriber registry and dispatches published
// values to it. The zero value is not usable; construct hubs with New.
type Hub[T any] struct {
	logger *slog.Logger
	replay bool

	// dispatchMu serializes publishes so per-subscriber delivery order
	// always matches publish order.
	dispatchMu sync.Mutex

	mu        sync.Mutex
	entries   []*entry[T]
	nextSeq   uint64
	published bool
	last      T
}

type entry[T any] struct {
	sub      Subscriber[T]
	priority int
	filter   func(T) bool
	seq      uint64
}

// Option configures hub construction.
type Option func(*settings)

type settings struct {
	logger *slog.Logger
	replay bool
	name   string
}

// WithLogger routes hub diagnostics to the provided logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReplay retains the most recently published value and delivers it to
// each newly registered subscriber before Register returns.
func WithReplay() Option {
	return func(s *settings) { s.replay = true }
}

// WithName tags the hub's log lines with a component name.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// New constructs a hub for values of type T.
func New[T any](opts ...Option) *Hub[T] {
	cfg := settings{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger
	if cfg.name != "" {
		logger = logger.With("component", cfg.name)
	}
	return &Hub[T]{logger: logger, replay: cfg.replay}
}

// Register adds sub to the registry with default settings. It reports whether
// the subscriber was newly added; registering an already-registered
// subscriber is a no-op that returns false.
func (h *Hub[T]) Register(sub Subscriber[T]) bool {
	return h.RegisterWith(sub, Registration[T]{})
}

// RegisterWith adds sub with explicit priority and filter settings. When the
// hub retains a replay value, the new subscriber receives it (subject to its
// filter) before RegisterWith returns; a replay failure is logged, not
// returned, since registration itself cannot fail.
func (h *Hub[T]) RegisterWith(sub Subscriber[T], reg Registration[T]) bool {
	if sub == nil {
		return false
	}

	h.mu.Lock()
	for _, ent := range h.entries {
		if ent.sub == sub {
			h.mu.Unlock()
			return false
		}
	}
	ent := &entry[T]{sub: sub, priority: reg.Priority, filter: reg.Filter, seq: h.nextSeq}
	h.nextSeq++
	h.entries = append(h.entries, ent)
	replay := h.replay && h.published
	last := h.last
	h.mu.Unlock()

	h.logger.Debug("subscriber registered", "priority", reg.Priority, "filtered", reg.Filter != nil)

	if replay && (ent.filter == nil || ent.filter(last)) {
		if err := deliver(context.Background(), sub, last); err != nil {
			h.logger.Warn("replay delivery failed", "error", err)
		}
	}
	return true
}

// Unregister removes sub from the registry and reports whether it was
// present. Unregistering an unknown subscriber is a no-op. When called during
// a publish — including from inside a Receive callback — it cancels only
// deliveries that have not started yet; deliveries already under way or
// completed are unaffected.
func (h *Hub[T]) Unregister(sub Subscriber[T]) bool {
	if sub == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ent := range h.entries {
		if ent.sub == sub {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports the number of currently registered subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Receipt summarizes one publish: how many subscribers received the value,
// how many were skipped by filters or mid-dispatch unregistration, and which
// deliveries failed.
type Receipt[T any] struct {
	Delivered int
	Skipped   int
	Failures  []Failure[T]
}

// Publish delivers value to every subscriber registered when the call began,
// synchronously and in snapshot order. Subscribers registered during the
// dispatch do not see value; subscribers unregistered before their turn are
// skipped. Delivery failures never abort the dispatch: they are aggregated
// into a DeliveryError returned alongside the receipt. The only early exit is
// ctx cancellation, reported as the context's error.
func (h *Hub[T]) Publish(ctx context.Context, value T) (Receipt[T], error) {
	h.dispatchMu.Lock()
	defer h.dispatchMu.Unlock()

	snapshot := h.beginDispatch(value)
	receipt := Receipt[T]{}
	for _, ent := range snapshot {
		if err := ctx.Err(); err != nil {
			return receipt, err
		}
		if h.skip(ent, value) {
			receipt.Skipped++
			continue
		}
		if err := deliver(ctx, ent.sub, value); err != nil {
			receipt.Failures = append(receipt.Failures, Failure[T]{Subscriber: ent.sub, Err: err})
		} else {
			receipt.Delivered++
		}
	}
	return receipt, h.finishDispatch(receipt)
}

// Pending is the join point for an asynchronous publish. The receipt and
// aggregate error are finalized only after every delivery completed or
// failed.
type Pending[T any] struct {
	done    chan struct{}
	receipt Receipt[T]
	err     error
}

// Wait blocks until every delivery has completed or failed, then returns the
// finalized receipt and aggregate error.
func (p *Pending[T]) Wait() (Receipt[T], error) {
	<-p.done
	return p.receipt, p.err
}

// Done returns a channel closed once the publish has fully settled.
func (p *Pending[T]) Done() <-chan struct{} {
	return p.done
}

// PublishAsync delivers value to the snapshot concurrently, one goroutine per
// subscriber, and returns immediately. The dispatch lock is acquired before
// returning and held until every delivery settles, so overlapping publishes
// still reach each subscriber in publish order. Failure ordering in the
// receipt follows snapshot order regardless of which delivery finished first.
func (h *Hub[T]) PublishAsync(ctx context.Context, value T) *Pending[T] {
	h.dispatchMu.Lock()
	p := &Pending[T]{done: make(chan struct{})}

	go func() {
		defer h.dispatchMu.Unlock()
		defer close(p.done)

		snapshot := h.beginDispatch(value)
		errs := make([]error, len(snapshot))
		skipped := make([]bool, len(snapshot))

		var wg sync.WaitGroup
		for i, ent := range snapshot {
			if h.skip(ent, value) {
				skipped[i] = true
				continue
			}
			wg.Add(1)
			go func(i int, ent *entry[T]) {
				defer wg.Done()
				errs[i] = deliver(ctx, ent.sub, value)
			}(i, ent)
		}
		wg.Wait()

		receipt := Receipt[T]{}
		for i, ent := range snapshot {
			switch {
			case skipped[i]:
				receipt.Skipped++
			case errs[i] != nil:
				receipt.Failures = append(receipt.Failures, Failure[T]{Subscriber: ent.sub, Err: errs[i]})
			default:
				receipt.Delivered++
			}
		}
		p.receipt = receipt
		p.err = h.finishDispatch(receipt)
	}()

	return p
}

// beginDispatch snapshots the registry in delivery order and records value
// for replay. The snapshot is immune to registry mutation for the rest of
// the dispatch.
func (h *Hub[T]) beginDispatch(value T) []*entry[T] {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make([]*entry[T], len(h.entries))
	copy(snapshot, h.entries)
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].priority > snapshot[j].priority
	})

	if h.replay {
		h.last = value
		h.published = true
	}
	return snapshot
}

func (h *Hub[T]) finishDispatch(receipt Receipt[T]) error {
	if len(receipt.Failures) == 0 {
		return nil
	}
	h.logger.Warn("publish completed with failures",
		"delivered", receipt.Delivered,
		"failed", len(receipt.Failures),
		"skipped", receipt.Skipped)
	return &DeliveryError[T]{Failures: receipt.Failures}
}

// skip reports whether ent should be bypassed for value: either it was
// unregistered after the snapshot was taken, or its filter rejects value.
func (h *Hub[T]) skip(ent *entry[T], value T) bool {
	h.mu.Lock()
	registered := false
	for _, cur := range h.entries {
		if cur == ent {
			registered = true
			break
		}
	}
	h.mu.Unlock()
	if !registered {
		return true
	}
	return ent.filter != nil && !ent.filter(value)
}

// deliver invokes one subscriber, converting a panic into an ordinary
// delivery error so a misbehaving subscriber cannot tear down the dispatch.
func deliver[T any](ctx context.Context, sub Subscriber[T], value T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return sub.Receive(ctx, value)
}
