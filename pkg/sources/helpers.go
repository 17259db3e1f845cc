package sources

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/nocwatch/herald/internal/domain"
)

const (
	minIntervalOverride = time.Minute
	maxIntervalOverride = 24 * time.Hour

	maxSummaryLen = 300
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// plainText strips HTML markup from feed entry bodies and collapses
// whitespace, so renders stay single-line.
func plainText(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return whitespaceRun.ReplaceAllString(html, " ")
	}

	text := whitespaceRun.ReplaceAllString(strings.TrimSpace(doc.Text()), " ")
	if len(text) > maxSummaryLen {
		text = text[:maxSummaryLen] + "..."
	}
	return text
}

// intervalOverride reads a feed-supplied cache lifetime (RSS ttl, minutes)
// clamped to a sane range. Zero means no override.
func intervalOverride(feed *gofeed.Feed) time.Duration {
	if feed == nil || feed.Custom == nil {
		return 0
	}
	raw := strings.TrimSpace(feed.Custom["ttl"])
	if raw == "" {
		return 0
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0
	}

	d := time.Duration(minutes) * time.Minute
	if d < minIntervalOverride {
		d = minIntervalOverride
	}
	if d > maxIntervalOverride {
		d = maxIntervalOverride
	}
	return d
}

// candidateFn returns the fingerprint candidate list for one feed entry, in
// that source's priority order.
type candidateFn func(entry *gofeed.Item) []string

// normalizeFeed converts feed entries into items in document order. Entries
// with no usable fingerprint candidate are dropped and counted; the caller
// decides how loudly to report them.
func normalizeFeed(sourceID string, feed *gofeed.Feed, candidates candidateFn) domain.Batch {
	batch := domain.Batch{NextInterval: intervalOverride(feed)}
	if feed == nil || len(feed.Items) == 0 {
		return batch
	}

	now := time.Now().UTC()
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		fp, err := Fingerprint(candidates(entry)...)
		if err != nil {
			batch.Malformed++
			continue
		}
		batch.Items = append(batch.Items, domain.Item{
			Source:      sourceID,
			Fingerprint: fp,
			Title:       strings.TrimSpace(entry.Title),
			Link:        strings.TrimSpace(entry.Link),
			GUID:        strings.TrimSpace(entry.GUID),
			Published:   strings.TrimSpace(entry.Published),
			Updated:     strings.TrimSpace(entry.Updated),
			Summary:     plainText(entry.Description),
			SeenAt:      now,
		})
	}
	return batch
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
