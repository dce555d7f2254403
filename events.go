package tenauth

import (
	"context"
	"time"
)

// LoginEvent is published after a successful login. Delivery is
// fire-and-forget; the engine never waits for confirmation.
type LoginEvent struct {
	PrincipalID string
	TenantID    string
	At          time.Time
}

// EventPublisher receives login events for downstream consumers
// (notifications, reporting). Implementations must not block.
type EventPublisher interface {
	PublishLogin(ctx context.Context, event LoginEvent)
}

// NoOpPublisher discards all events.
type NoOpPublisher struct{}

// PublishLogin implements EventPublisher.
func (NoOpPublisher) PublishLogin(context.Context, LoginEvent) {}

// ChannelPublisher forwards events into a buffered channel, dropping when
// the buffer is full.
type ChannelPublisher struct {
	events chan LoginEvent
}

func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelPublisher{events: make(chan LoginEvent, buffer)}
}

// PublishLogin implements EventPublisher.
func (p *ChannelPublisher) PublishLogin(_ context.Context, event LoginEvent) {
	select {
	case p.events <- event:
	default:
	}
}

// Events exposes the receive side of the channel.
func (p *ChannelPublisher) Events() <-chan LoginEvent {
	return p.events
}
