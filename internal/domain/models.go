package domain

import "time"

// Domain contains core models shared across the announcement pipeline.

// Item is one normalized feed entry, tagged with the dedup fingerprint
// assigned by its source adapter.
type Item struct {
	Source      string    `json:"source"`
	Fingerprint string    `json:"fingerprint"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	GUID        string    `json:"guid"`
	Published   string    `json:"published"`
	Updated     string    `json:"updated,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	SeenAt      time.Time `json:"seen_at"`
}

// Batch is the result of normalizing one fetched feed document.
// NextInterval is a feed-suggested override for the next poll delay;
// zero means the configured default applies.
type Batch struct {
	Items        []Item
	NextInterval time.Duration
	Malformed    int
}
