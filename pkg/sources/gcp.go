package sources

import (
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/nocwatch/herald/internal/domain"
)

const gcpSourceID = "gcp"

// gcpAdapter normalizes the Google Cloud incident feed. GCP publishes one
// entry per incident revision with a fresh updated timestamp, so the date
// fields identify a revision on their own.
type gcpAdapter struct{}

// NewGCPAdapter builds the adapter for the Google Cloud incident feed.
func NewGCPAdapter() Adapter { return gcpAdapter{} }

func (gcpAdapter) ID() string { return gcpSourceID }

func (gcpAdapter) Normalize(feed *gofeed.Feed) (domain.Batch, error) {
	return normalizeFeed(gcpSourceID, feed, func(entry *gofeed.Item) []string {
		return []string{entry.Updated, entry.Published, entry.GUID}
	}), nil
}

func (gcpAdapter) Render(item domain.Item) string {
	return fmt.Sprintf("GCP incident (%s): %s %s",
		firstNonEmpty(item.Updated, item.Published, "unknown time"),
		firstNonEmpty(item.Title, "untitled"),
		item.Link)
}
