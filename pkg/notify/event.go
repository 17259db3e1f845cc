package notify

import (
	"time"

	"github.com/nocwatch/herald/internal/domain"
)

// Event represents one announced item forwarded to mirror sinks.
type Event struct {
	Source      string      `json:"source"`
	Line        string      `json:"line"`
	Item        domain.Item `json:"item"`
	AnnouncedAt time.Time   `json:"announced_at"`
}

// NewEvent constructs an Event for the given announced item.
func NewEvent(item domain.Item, line string) Event {
	return Event{
		Source:      item.Source,
		Line:        line,
		Item:        item,
		AnnouncedAt: time.Now().UTC(),
	}
}
