package sequencer

import (
	"context"
	"time"

	"github.com/nocwatch/herald/internal/logger"
)

// Package sequencer executes an ordered list of deferred send operations with
// a mandatory delay between completions. IRC servers penalize bursts, so both
// announcement batches and multi-line command replies go through this.

// Action is one deferred send operation.
type Action func(ctx context.Context) error

// Sequencer runs actions strictly in order, waiting at least the configured
// delay after each completed action except the last. A failed action is
// logged and does not abort the remainder; there is no retry. The sequencer
// owns the action list only for the duration of one Run.
type Sequencer struct {
	delay time.Duration
	log   logger.Logger
}

// New builds a sequencer with the given inter-action delay.
func New(delay time.Duration, log logger.Logger) *Sequencer {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Sequencer{delay: delay, log: log}
}

// Run executes the actions. It returns early only when the context is
// cancelled; action failures are contained.
func (s *Sequencer) Run(ctx context.Context, actions []Action) error {
	for i, action := range actions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := action(ctx); err != nil {
			s.log.WarnObj("sequenced action failed", "sequencer_error", map[string]any{
				"index": i,
				"total": len(actions),
				"error": err.Error(),
			})
		}

		if s.delay > 0 && i < len(actions)-1 {
			timer := time.NewTimer(s.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}
