package sources

import (
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/nocwatch/herald/internal/domain"
)

const awsSourceID = "aws"

// awsAdapter normalizes the AWS service health RSS feed.
//
// The AWS feed reuses one pubDate across every entry published in the same
// sweep, so the guid leads the fingerprint candidates; date fields are only
// a fallback.
type awsAdapter struct{}

// NewAWSAdapter builds the adapter for the AWS status feed.
func NewAWSAdapter() Adapter { return awsAdapter{} }

func (awsAdapter) ID() string { return awsSourceID }

func (awsAdapter) Normalize(feed *gofeed.Feed) (domain.Batch, error) {
	return normalizeFeed(awsSourceID, feed, func(entry *gofeed.Item) []string {
		return []string{entry.GUID, entry.Published, entry.Updated}
	}), nil
}

func (awsAdapter) Render(item domain.Item) string {
	return fmt.Sprintf("AWS event at %s: %q -- %s",
		firstNonEmpty(item.Published, item.Updated, "unknown time"),
		item.Title,
		firstNonEmpty(item.GUID, item.Link))
}
