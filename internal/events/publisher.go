package events

import "context"

// Publisher announces resume lifecycle events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, msg ResumeUploaded) error
}

// Nop drops every event. Used when no events backend is configured.
type Nop struct{}

func (Nop) Publish(context.Context, ResumeUploaded) error { return nil }

var _ Publisher = Nop{}
