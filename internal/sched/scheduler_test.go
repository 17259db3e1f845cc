package sched

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nocwatch/herald/internal/domain"
	"github.com/nocwatch/herald/internal/markers"
	"github.com/nocwatch/herald/internal/stats"
	"github.com/nocwatch/herald/pkg/fetch"
	"github.com/nocwatch/herald/pkg/sources"
)

// fakeFetcher returns a preset feed or an error.
type fakeFetcher struct {
	feed *gofeed.Feed
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*gofeed.Feed, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.feed, nil
}

// fakeSender records delivered lines.
type fakeSender struct {
	mu    sync.Mutex
	lines []string
}

func (f *fakeSender) Send(_ string, line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lines = append(f.lines, line)
}

func (f *fakeSender) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.lines))
	copy(out, f.lines)
	return out
}

// fakeMirror records mirrored items.
type fakeMirror struct {
	items []domain.Item
}

func (f *fakeMirror) Announce(_ context.Context, item domain.Item, _ string) {
	f.items = append(f.items, item)
}

func awsFeed(guids ...string) *gofeed.Feed {
	feed := &gofeed.Feed{}
	for _, g := range guids {
		feed.Items = append(feed.Items, &gofeed.Item{
			Title:     "event " + g,
			GUID:      g,
			Published: "Mon, 02 Feb 2026 10:00:00 GMT",
		})
	}
	return feed
}

func newTestScheduler(fetcher *fakeFetcher, sender *fakeSender, store markers.Store, st *stats.Stats, mirror Mirror) *Scheduler {
	return New(Options{
		Source: sources.Source{
			Descriptor: sources.Descriptor{ID: "aws", Name: "AWS", URL: "https://status.example/rss"},
			Adapter:    sources.NewAWSAdapter(),
		},
		Fetcher:         fetcher,
		Store:           store,
		Sender:          sender,
		Channel:         "#noc",
		AnnounceDelay:   0,
		DefaultInterval: 15 * time.Minute,
		Stats:           st,
		Mirror:          mirror,
	})
}

func TestSilentFirstCycleSeedsWithoutAnnouncing(t *testing.T) {
	store := markers.NewMemory()
	sender := &fakeSender{}
	st := stats.New()
	s := newTestScheduler(&fakeFetcher{feed: awsFeed("g1", "g2", "g3")}, sender, store, st, nil)

	interval := s.cycle(context.Background(), true)

	if got := len(sender.sent()); got != 0 {
		t.Fatalf("silent cycle sent %d lines, want 0", got)
	}
	if store.Len() != 3 {
		t.Fatalf("silent cycle created %d markers, want 3", store.Len())
	}
	if st.Announced() != 0 {
		t.Fatalf("silent cycle counted %d announcements, want 0", st.Announced())
	}
	if interval != 15*time.Minute {
		t.Fatalf("interval = %v, want default", interval)
	}
}

func TestCycleAnnouncesOnlyUnseenItems(t *testing.T) {
	store := markers.NewMemory()
	sender := &fakeSender{}
	st := stats.New()
	fetcher := &fakeFetcher{feed: awsFeed("g1", "g2")}
	s := newTestScheduler(fetcher, sender, store, st, nil)

	s.cycle(context.Background(), true)

	fetcher.feed = awsFeed("g1", "g2", "g3")
	s.cycle(context.Background(), false)

	lines := sender.sent()
	if len(lines) != 1 {
		t.Fatalf("expected 1 announcement, got %d: %v", len(lines), lines)
	}
	if want := `"event g3"`; !contains(lines[0], want) {
		t.Fatalf("announcement %q does not mention the new item", lines[0])
	}
	if st.Announced() != 1 {
		t.Fatalf("announced counter = %d, want 1", st.Announced())
	}

	// Re-running the same feed must announce nothing further.
	s.cycle(context.Background(), false)
	if got := len(sender.sent()); got != 1 {
		t.Fatalf("duplicate items re-announced, %d lines total", got)
	}
}

func TestCycleAnnouncesInDocumentOrder(t *testing.T) {
	store := markers.NewMemory()
	sender := &fakeSender{}
	s := newTestScheduler(&fakeFetcher{feed: awsFeed("g1", "g2", "g3")}, sender, store, stats.New(), nil)

	s.cycle(context.Background(), false)

	lines := sender.sent()
	if len(lines) != 3 {
		t.Fatalf("expected 3 announcements, got %d", len(lines))
	}
	for i, g := range []string{"g1", "g2", "g3"} {
		if !contains(lines[i], g) {
			t.Fatalf("line %d = %q, want item %s", i, lines[i], g)
		}
	}
}

func TestCycleFetchFailureReschedulesAtDefault(t *testing.T) {
	sender := &fakeSender{}
	s := newTestScheduler(&fakeFetcher{err: errors.New("connection refused")}, sender, markers.NewMemory(), stats.New(), nil)

	interval := s.cycle(context.Background(), false)

	if interval != 15*time.Minute {
		t.Fatalf("interval after fetch failure = %v, want default", interval)
	}
	if len(sender.sent()) != 0 {
		t.Fatalf("failed fetch should announce nothing")
	}
}

func TestCycleHonorsFeedIntervalOverride(t *testing.T) {
	feed := awsFeed("g1")
	feed.Custom = map[string]string{"ttl": "30"}
	s := newTestScheduler(&fakeFetcher{feed: feed}, &fakeSender{}, markers.NewMemory(), stats.New(), nil)

	interval := s.cycle(context.Background(), true)
	if interval != 30*time.Minute {
		t.Fatalf("interval = %v, want feed override of 30m", interval)
	}
}

func TestCycleHonorsTTLFromParsedDocument(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Status</title>
    <ttl>30</ttl>
    <item>
      <title>incident</title>
      <guid>g1</guid>
      <pubDate>Fri, 28 Aug 2026 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	s := New(Options{
		Source: sources.Source{
			Descriptor: sources.Descriptor{ID: "aws", Name: "AWS", URL: srv.URL},
			Adapter:    sources.NewAWSAdapter(),
		},
		Fetcher:         fetch.New(5 * time.Second),
		Store:           markers.NewMemory(),
		Sender:          &fakeSender{},
		Channel:         "#noc",
		DefaultInterval: 15 * time.Minute,
		Stats:           stats.New(),
	})

	interval := s.cycle(context.Background(), true)
	if interval != 30*time.Minute {
		t.Fatalf("interval = %v, want 30m from the document's ttl element", interval)
	}
}

// cancelingSender cancels the cycle's context after the first delivered line.
type cancelingSender struct {
	fakeSender
	cancel context.CancelFunc
	once   sync.Once
}

func (c *cancelingSender) Send(target, line string) {
	c.fakeSender.Send(target, line)
	c.once.Do(c.cancel)
}

func TestCycleInterruptedBatchCountsDeliveredItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := &cancelingSender{cancel: cancel}
	mirror := &fakeMirror{}
	st := stats.New()
	store := markers.NewMemory()

	s := New(Options{
		Source: sources.Source{
			Descriptor: sources.Descriptor{ID: "aws", Name: "AWS", URL: "https://status.example/rss"},
			Adapter:    sources.NewAWSAdapter(),
		},
		Fetcher:         &fakeFetcher{feed: awsFeed("g1", "g2", "g3")},
		Store:           store,
		Sender:          sender,
		Channel:         "#noc",
		AnnounceDelay:   20 * time.Millisecond,
		DefaultInterval: 15 * time.Minute,
		Stats:           st,
		Mirror:          mirror,
	})

	interval := s.cycle(ctx, false)

	if got := len(sender.sent()); got != 1 {
		t.Fatalf("expected 1 delivered line before cancellation, got %d", got)
	}
	if st.Announced() != 1 {
		t.Fatalf("announced counter = %d, want exactly the delivered count", st.Announced())
	}
	if len(mirror.items) != 1 {
		t.Fatalf("mirror saw %d items, want only the delivered one", len(mirror.items))
	}
	if interval != 15*time.Minute {
		t.Fatalf("interrupted cycle interval = %v, want default", interval)
	}
}

func TestCycleMirrorsAnnouncedItems(t *testing.T) {
	mirror := &fakeMirror{}
	s := newTestScheduler(&fakeFetcher{feed: awsFeed("g1", "g2")}, &fakeSender{}, markers.NewMemory(), stats.New(), mirror)

	s.cycle(context.Background(), false)

	if len(mirror.items) != 2 {
		t.Fatalf("mirror saw %d items, want 2", len(mirror.items))
	}
	if mirror.items[0].Source != "aws" {
		t.Fatalf("mirrored item has source %q", mirror.items[0].Source)
	}
}

func contains(s, sub string) bool { return strings.Contains(s, sub) }
