// Package events provides in-process publish/subscribe for timeline
// mutations, so hosts can observe commits (for autosave, status lines,
// activity logs) without coupling to the engine's internals.
package events

import (
	"sync"
	"time"

	"github.com/tOgg1/trackline/internal/models"
)

// Type identifies a timeline event.
type Type string

const (
	TypeClipAdded        Type = "clip.added"
	TypeClipMoved        Type = "clip.moved"
	TypeClipResized      Type = "clip.resized"
	TypeClipReplaced     Type = "clip.replaced"
	TypeClipSplit        Type = "clip.split"
	TypeClipDuplicated   Type = "clip.duplicated"
	TypeClipDeleted      Type = "clip.deleted"
	TypeLaneAdded        Type = "lane.added"
	TypeLaneRemoved      Type = "lane.removed"
	TypeSelectionChanged Type = "selection.changed"
	TypePlayheadSeeked   Type = "playhead.seeked"
)

// Event is one committed timeline mutation.
type Event struct {
	Type   Type        `json:"type"`
	Kind   models.Kind `json:"kind,omitempty"`
	ClipID string      `json:"clip_id,omitempty"`
	Lane   int         `json:"lane,omitempty"`

	// Seconds carries the playhead time for seek events.
	Seconds float64 `json:"seconds,omitempty"`

	Time time.Time `json:"time"`
}

// Handler is a callback invoked when an event matches a subscription.
type Handler func(event Event)

// Filter defines criteria for matching events.
type Filter struct {
	// Types filters by event type (nil = all types).
	Types []Type

	// Kinds filters by clip kind (nil = all kinds).
	Kinds []models.Kind

	// ClipID filters to a specific clip (empty = all).
	ClipID string
}

// Matches returns true if the event satisfies the filter criteria.
func (f *Filter) Matches(event Event) bool {
	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if event.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.Kinds) > 0 {
		matched := false
		for _, k := range f.Kinds {
			if event.Kind == k {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.ClipID != "" && event.ClipID != f.ClipID {
		return false
	}

	return true
}

// subscription represents an active event subscription.
type subscription struct {
	id      string
	filter  Filter
	handler Handler
}

// Publisher routes committed timeline events to subscribers.
type Publisher struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
}

// NewPublisher creates an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{subscriptions: make(map[string]*subscription)}
}

// Publish sends an event to all matching subscribers. Handlers run outside
// the lock, on the caller's goroutine.
func (p *Publisher) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	p.mu.RLock()
	var handlers []Handler
	for _, sub := range p.subscriptions {
		if sub.filter.Matches(event) {
			handlers = append(handlers, sub.handler)
		}
	}
	p.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// Subscribe registers a handler to receive events matching the filter.
func (p *Publisher) Subscribe(id string, filter Filter, handler Handler) error {
	if id == "" {
		return ErrInvalidSubscriptionID
	}
	if handler == nil {
		return ErrNilHandler
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[id]; exists {
		return ErrSubscriptionExists
	}

	p.subscriptions[id] = &subscription{id: id, filter: filter, handler: handler}
	return nil
}

// Unsubscribe removes a subscription by ID.
func (p *Publisher) Unsubscribe(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.subscriptions[id]; !exists {
		return ErrSubscriptionNotFound
	}

	delete(p.subscriptions, id)
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (p *Publisher) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subscriptions)
}

// Close removes all subscriptions.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscriptions = make(map[string]*subscription)
}

// Errors for publisher operations.
var (
	ErrInvalidSubscriptionID = &PublisherError{Message: "subscription ID is required"}
	ErrNilHandler            = &PublisherError{Message: "handler cannot be nil"}
	ErrSubscriptionExists    = &PublisherError{Message: "subscription with this ID already exists"}
	ErrSubscriptionNotFound  = &PublisherError{Message: "subscription not found"}
)

// PublisherError represents an error from publisher operations.
type PublisherError struct {
	Message string
}

func (e *PublisherError) Error() string {
	return e.Message
}
