package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/nocwatch/herald/internal/domain"
)

// Fanout dispatches events to all configured sinks.
type Fanout struct {
	sinks []Sink
	log   Logger
}

// NewFanout builds a dispatcher that fans out events across sinks.
func NewFanout(sinks []Sink, log Logger) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{sinks: cp, log: ensureLogger(log)}
}

// Publish forwards the event to every registered sink.
// It returns the number of sinks that successfully handled the event.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.sinks) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, s := range f.sinks {
		if err := s.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", s.Type(), s.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Announce forwards one announced item to every sink, logging failures.
// Mirroring is best-effort; errors never propagate to the announcement path.
func (f *Fanout) Announce(ctx context.Context, item domain.Item, line string) {
	if f == nil || len(f.sinks) == 0 {
		return
	}
	if _, err := f.Publish(ctx, NewEvent(item, line)); err != nil {
		f.log.WarnObj("announcement mirror failed", "mirror_error", map[string]any{
			"source":      item.Source,
			"fingerprint": item.Fingerprint,
			"error":       err.Error(),
		})
	}
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}
