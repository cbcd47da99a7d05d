package provider

import (
	"context"
	"fmt"
	"sync"

	evbus "github.com/asaskevich/EventBus"
	"github.com/ethereum/go-ethereum/common"
)

// EventKind identifies a pushed provider notification.
type EventKind int

const (
	AccountsChanged EventKind = iota + 1
	ChainChanged
)

// Event is one notification. Accounts is set for AccountsChanged, ChainID
// for ChainChanged.
type Event struct {
	Kind     EventKind
	Accounts []common.Address
	ChainID  int64
}

// Subscription is a live event stream. Release it with Unsubscribe or by
// cancelling the context passed to Subscribe.
type Subscription struct {
	C <-chan Event

	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery and closes C. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Feed fans provider events out to subscribers. Each subscriber gets its own
// bus topic so releasing one never detaches another.
type Feed struct {
	bus evbus.Bus

	mu     sync.Mutex
	nextID int
	topics map[string]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{bus: evbus.New(), topics: make(map[string]struct{})}
}

// Subscribe registers a subscriber for the lifetime of ctx.
func (f *Feed) Subscribe(ctx context.Context) (*Subscription, error) {
	ch := make(chan Event, 16)
	done := make(chan struct{})
	deliver := func(ev Event) {
		select {
		case ch <- ev:
		case <-done:
		}
	}

	f.mu.Lock()
	f.nextID++
	topic := fmt.Sprintf("provider:%d", f.nextID)
	if err := f.bus.Subscribe(topic, deliver); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.topics[topic] = struct{}{}
	f.mu.Unlock()

	sub := &Subscription{C: ch}
	sub.cancel = func() {
		close(done)
		f.mu.Lock()
		delete(f.topics, topic)
		f.mu.Unlock()
		_ = f.bus.Unsubscribe(topic, deliver)
		close(ch)
	}
	go func() {
		select {
		case <-ctx.Done():
			sub.Unsubscribe()
		case <-done:
		}
	}()
	return sub, nil
}

// Publish delivers ev to every live subscriber.
func (f *Feed) Publish(ev Event) {
	f.mu.Lock()
	topics := make([]string, 0, len(f.topics))
	for t := range f.topics {
		topics = append(topics, t)
	}
	f.mu.Unlock()

	for _, t := range topics {
		f.bus.Publish(t, ev)
	}
}

// Subscribers returns the number of live subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.topics)
}
