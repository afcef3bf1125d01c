// Package events fans feed changes out to live subscribers.
package events

import (
	"context"
	"errors"
)

// Event types emitted by the HTTP layer.
const (
	NewPost       = "new_post"
	DeletePost    = "delete_post"
	FlagPost      = "flag_post"
	Like          = "like"
	Reaction      = "reaction"
	NewComment    = "new_comment"
	DeleteComment = "delete_comment"
)

// Event is the envelope sent to every subscriber.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi publishes to each publisher in turn and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
