// Package eventbus provides a small typed publish/subscribe helper used
// internally by the discovery package to fan in asynchronous inquiry
// responses before they are collected into an ordered result.
//
// It is a scaled-down version of a process-wide event bus: rather than one
// shared bus for a whole application, callers create one bus per logical
// scan and tear it down when that scan is done.
package eventbus

import (
	"github.com/cskr/pubsub/v2"
)

// Topic identifies a stream of events on a Bus.
type Topic uint

// Bus is a scoped publish/subscribe channel set, keyed by Topic.
type Bus[T any] struct {
	ps *pubsub.PubSub[Topic, T]
}

// New returns a Bus with the given per-subscriber buffer capacity.
func New[T any](capacity int) *Bus[T] {
	return &Bus[T]{ps: pubsub.New[Topic, T](capacity)}
}

// Publish sends data to every current subscriber of topic. It never blocks
// longer than the subscriber's buffer allows; a full subscriber drops the
// event rather than stalling the publisher.
func (b *Bus[T]) Publish(topic Topic, data T) {
	b.ps.TryPub(data, topic)
}

// Subscribe returns a channel that receives every event published to topic
// from this point on.
func (b *Bus[T]) Subscribe(topic Topic) chan T {
	return b.ps.Sub(topic)
}

// Unsubscribe detaches ch from topic and closes it.
func (b *Bus[T]) Unsubscribe(ch chan T, topic Topic) {
	b.ps.Unsub(ch, topic)
}

// Shutdown closes every subscriber channel and releases the bus.
func (b *Bus[T]) Shutdown() {
	b.ps.Shutdown()
}
