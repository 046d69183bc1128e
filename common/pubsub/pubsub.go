// Package pubsub implements a minimal broadcast broker: subscribers get an
// unbounded-buffer channel fed by Broadcast, so a slow subscriber never
// blocks a fast publisher.
package pubsub

import (
	"sync"

	"github.com/eapache/channels"
)

// Subscription is a handle to a single subscriber of a Broker.
type Subscription struct {
	broker *Broker
	ch     *channels.InfiniteChannel
	once   sync.Once
}

// Unwrap starts forwarding broadcast values onto the given channel until
// the subscription is closed.
func (s *Subscription) Unwrap(out interface{}) {
	switch o := out.(type) {
	default:
		panic("pubsub: Unwrap: unsupported channel type")
	case chan interface{}:
		go func() {
			for v := range s.ch.Out() {
				o <- v
			}
			close(o)
		}()
	}
}

// Close terminates the subscription, releasing its backing channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broker.remove(s)
		s.ch.Close()
	})
}

// Broker is a simple publish/broadcast hub. The zero value is not usable;
// construct with NewBroker.
type Broker struct {
	sync.Mutex

	subs []*Subscription

	onSubscribe func(*channels.InfiniteChannel)
}

// NewBroker creates a new Broker. replayLast is accepted for signature
// symmetry with brokers that do replay history on subscribe, but this
// broker does not itself replay; callers that need replay-on-subscribe use
// SubscribeEx with an explicit replay callback instead.
func NewBroker(replayLast bool) *Broker {
	return &Broker{}
}

// Subscribe returns a new Subscription that will receive every value
// Broadcast after this call.
func (b *Broker) Subscribe() *Subscription {
	return b.SubscribeEx(nil)
}

// SubscribeEx is like Subscribe, but invokes onSubscribe (if non-nil) with
// the new subscriber's channel before it starts receiving broadcasts, so
// the caller can push replay values onto it first.
func (b *Broker) SubscribeEx(onSubscribe func(*channels.InfiniteChannel)) *Subscription {
	ch := channels.NewInfiniteChannel()
	sub := &Subscription{broker: b, ch: ch}

	b.Lock()
	defer b.Unlock()
	if onSubscribe != nil {
		onSubscribe(ch)
	}
	b.subs = append(b.subs, sub)

	return sub
}

// Broadcast publishes v to every current subscriber.
func (b *Broker) Broadcast(v interface{}) {
	b.Lock()
	defer b.Unlock()

	for _, sub := range b.subs {
		sub.ch.In() <- v
	}
}

func (b *Broker) remove(target *Subscription) {
	b.Lock()
	defer b.Unlock()

	for i, sub := range b.subs {
		if sub == target {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}
