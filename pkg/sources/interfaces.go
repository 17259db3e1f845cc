package sources

import (
	"github.com/mmcdole/gofeed"

	"github.com/nocwatch/herald/internal/domain"
)

// Adapter normalizes one source's fetched feed documents into announcement
// items and renders them for the channel. Implementations must be pure:
// Normalize must not mutate the parsed feed, and Render must not fail for
// any item Normalize produced.
type Adapter interface {
	ID() string
	Normalize(feed *gofeed.Feed) (domain.Batch, error)
	Render(item domain.Item) string
}
