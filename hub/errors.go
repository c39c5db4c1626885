package hub

import (
	"fmt"
	"strings"
)

// Failure records one subscriber's delivery error for a single publish.
type Failure[T any] struct {
	Subscriber Subscriber[T]
	Err        error
}

// DeliveryError aggregates every per-subscriber failure from one publish.
// Publish never aborts on the first failing subscriber; the full set is
// reported here after all deliveries were attempted.
type DeliveryError[T any] struct {
	Failures []Failure[T]
}

func (e *DeliveryError[T]) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return "delivery failed"
	}
	if len(e.Failures) == 1 {
		return fmt.Sprintf("delivery failed for 1 subscriber: %v", e.Failures[0].Err)
	}
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Err.Error())
	}
	return fmt.Sprintf("delivery failed for %d subscribers: %s", len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes the underlying causes to errors.Is and errors.As.
func (e *DeliveryError[T]) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
