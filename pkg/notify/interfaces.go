package notify

import "context"

// Sink forwards announcement events to a downstream system (HTTP, SNS, etc).
type Sink interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
