package sched

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nocwatch/herald/internal/domain"
	"github.com/nocwatch/herald/internal/logger"
	"github.com/nocwatch/herald/internal/markers"
	"github.com/nocwatch/herald/internal/sequencer"
	"github.com/nocwatch/herald/internal/stats"
	"github.com/nocwatch/herald/pkg/fetch"
	"github.com/nocwatch/herald/pkg/sources"
)

// Package sched runs one self-rescheduling poll loop per source. Within a
// loop, cycle N+1 never starts before cycle N has finished announcing, so a
// source never has two in-flight cycles and its marker store never sees two
// concurrent writers.

// Sender delivers one announcement line to the channel.
type Sender interface {
	Send(target, line string)
}

// Mirror receives each announced item after delivery. Optional.
type Mirror interface {
	Announce(ctx context.Context, item domain.Item, line string)
}

// Scheduler polls a single source.
type Scheduler struct {
	source          sources.Source
	fetcher         fetch.Fetcher
	store           markers.Store
	sender          Sender
	channel         string
	announceDelay   time.Duration
	defaultInterval time.Duration
	stats           *stats.Stats
	mirror          Mirror
	log             logger.Logger
}

// Options bundles the scheduler collaborators.
type Options struct {
	Source          sources.Source
	Fetcher         fetch.Fetcher
	Store           markers.Store
	Sender          Sender
	Channel         string
	AnnounceDelay   time.Duration
	DefaultInterval time.Duration
	Stats           *stats.Stats
	Mirror          Mirror
	Log             logger.Logger
}

// New builds a scheduler for one source.
func New(opts Options) *Scheduler {
	log := opts.Log
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scheduler{
		source:          opts.Source,
		fetcher:         opts.Fetcher,
		store:           opts.Store,
		sender:          opts.Sender,
		channel:         opts.Channel,
		announceDelay:   opts.AnnounceDelay,
		defaultInterval: opts.DefaultInterval,
		stats:           opts.Stats,
		mirror:          opts.Mirror,
		log:             log,
	}
}

// Run polls until the context is cancelled. The first cycle runs immediately
// in silent mode: it seeds the marker store from whatever the feed already
// carries without announcing, so a fresh start never floods the channel.
func (s *Scheduler) Run(ctx context.Context) {
	silent := true
	for {
		interval := s.cycle(ctx, silent)
		silent = false

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.InfoObj("scheduler loop exiting", "scheduler_state", map[string]any{
				"source": s.source.Descriptor.ID,
				"reason": ctx.Err().Error(),
			})
			return
		case <-timer.C:
		}
	}
}

// cycle runs one fetch-filter-announce pass and returns the delay before the
// next cycle. Failures are contained: a failed fetch or normalize reschedules
// at the default interval.
func (s *Scheduler) cycle(ctx context.Context, silent bool) time.Duration {
	id := s.source.Descriptor.ID

	feed, err := s.fetcher.Fetch(ctx, s.source.Descriptor.URL)
	if err != nil {
		s.log.WarnObj("source fetch failed", "fetch_error", map[string]any{
			"source": id,
			"url":    s.source.Descriptor.URL,
			"error":  err.Error(),
		})
		return s.defaultInterval
	}

	batch, err := s.source.Adapter.Normalize(feed)
	if err != nil {
		s.log.WarnObj("source normalize failed", "normalize_error", map[string]any{
			"source": id,
			"error":  err.Error(),
		})
		return s.defaultInterval
	}
	if batch.Malformed > 0 {
		s.log.WarnObj("skipped malformed items", "normalize_result", map[string]any{
			"source":    id,
			"malformed": batch.Malformed,
		})
	}

	actions, announced := s.filterNew(batch.Items, silent)

	if silent {
		s.log.InfoObj("silent seed cycle completed", "seed_result", map[string]any{
			"source": id,
			"seeded": len(announced),
		})
	} else if len(actions) > 0 {
		// Await the full batch so announcement time counts against the next
		// delay and cycles never interleave their sends. Stats and mirroring
		// ride inside each action, so a batch cut short by cancellation still
		// accounts for every line it actually delivered.
		seq := sequencer.New(s.announceDelay, s.log)
		if err := seq.Run(ctx, actions); err != nil {
			return s.defaultInterval
		}
	}

	if batch.NextInterval > 0 {
		return batch.NextInterval
	}
	return s.defaultInterval
}

// filterNew walks items in document order, keeping only unseen fingerprints.
// Each new item is marked immediately; a mark failure is logged and the item
// stays announced, accepting a possible re-announcement next cycle.
func (s *Scheduler) filterNew(items []domain.Item, silent bool) ([]sequencer.Action, []domain.Item) {
	id := s.source.Descriptor.ID

	var actions []sequencer.Action
	var announced []domain.Item

	for _, item := range items {
		seen, err := s.store.Seen(id, item.Fingerprint)
		if err != nil {
			s.log.WarnObj("marker lookup failed", "marker_error", map[string]any{
				"source":      id,
				"fingerprint": item.Fingerprint,
				"error":       err.Error(),
			})
			continue
		}
		if seen {
			continue
		}

		if !silent {
			item := item
			line := s.source.Adapter.Render(item)
			actions = append(actions, func(ctx context.Context) error {
				s.sender.Send(s.channel, line)
				if s.stats != nil {
					s.stats.RecordAnnounced(1)
				}
				if s.mirror != nil {
					s.mirror.Announce(ctx, item, line)
				}
				return nil
			})
		}
		announced = append(announced, item)

		payload, err := json.Marshal(item)
		if err != nil {
			payload = nil
		}
		if err := s.store.Mark(id, item.Fingerprint, payload); err != nil {
			s.log.WarnObj("marker write failed", "marker_error", map[string]any{
				"source":      id,
				"fingerprint": item.Fingerprint,
				"error":       err.Error(),
			})
		}
	}

	return actions, announced
}
