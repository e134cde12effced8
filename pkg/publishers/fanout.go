package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DeliveryError reports one sink that failed to take an event.
type DeliveryError struct {
	PublisherID   string
	PublisherType string
	Err           error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s publisher %q: %v", e.PublisherType, e.PublisherID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Fanout hands every event to each publisher in order.
type Fanout struct {
	sinks []Publisher
}

// NewFanout drops nil entries from pubs.
func NewFanout(pubs []Publisher) *Fanout {
	f := &Fanout{sinks: make([]Publisher, 0, len(pubs))}
	for _, p := range pubs {
		if p != nil {
			f.sinks = append(f.sinks, p)
		}
	}
	return f
}

// Publish returns how many publishers accepted evt. Every failure is
// included in the joined error as a *DeliveryError, so a caller can tell
// partial delivery (delivered > 0) from total failure.
func (f *Fanout) Publish(ctx context.Context, evt Event) (delivered int, err error) {
	if f == nil {
		return 0, nil
	}
	var failures []error
	for _, sink := range f.sinks {
		if perr := sink.Publish(ctx, evt); perr != nil {
			failures = append(failures, &DeliveryError{PublisherID: sink.ID(), PublisherType: sink.Type(), Err: perr})
			continue
		}
		delivered++
	}
	return delivered, errors.Join(failures...)
}

// Size is the number of publishers events are sent to.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}

// Close closes every publisher that holds a client and joins the errors.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var failures []error
	for _, sink := range f.sinks {
		closer, ok := sink.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			failures = append(failures, &DeliveryError{PublisherID: sink.ID(), PublisherType: sink.Type(), Err: fmt.Errorf("close: %w", err)})
		}
	}
	return errors.Join(failures...)
}
