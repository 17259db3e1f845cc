package sources

import (
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/nocwatch/herald/internal/domain"
)

const oracleSourceID = "oracle"

// oracleAdapter normalizes the OCI status RSS feed.
type oracleAdapter struct{}

// NewOracleAdapter builds the adapter for the OCI status feed.
func NewOracleAdapter() Adapter { return oracleAdapter{} }

func (oracleAdapter) ID() string { return oracleSourceID }

func (oracleAdapter) Normalize(feed *gofeed.Feed) (domain.Batch, error) {
	return normalizeFeed(oracleSourceID, feed, func(entry *gofeed.Item) []string {
		return []string{entry.Published, entry.Updated, entry.GUID}
	}), nil
}

func (oracleAdapter) Render(item domain.Item) string {
	return fmt.Sprintf("OCI status (%s): %s %s",
		firstNonEmpty(item.Published, item.Updated, "unknown time"),
		firstNonEmpty(item.Title, "untitled"),
		firstNonEmpty(item.Link, item.GUID))
}
