package sources

import (
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/nocwatch/herald/internal/domain"
)

const azureSourceID = "azure"

// azureAdapter normalizes the Azure status RSS feed.
type azureAdapter struct{}

// NewAzureAdapter builds the adapter for the Azure status feed.
func NewAzureAdapter() Adapter { return azureAdapter{} }

func (azureAdapter) ID() string { return azureSourceID }

func (azureAdapter) Normalize(feed *gofeed.Feed) (domain.Batch, error) {
	return normalizeFeed(azureSourceID, feed, func(entry *gofeed.Item) []string {
		return []string{entry.Published, entry.Updated, entry.GUID}
	}), nil
}

func (azureAdapter) Render(item domain.Item) string {
	out := fmt.Sprintf("Azure status update [%s]: %s",
		firstNonEmpty(item.Published, item.Updated, "unknown time"),
		firstNonEmpty(item.Title, item.GUID))
	if item.Summary != "" {
		out += " -- " + item.Summary
	}
	return out
}
