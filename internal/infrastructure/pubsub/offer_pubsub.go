package pubsub

import (
	"context"
	"sync"

	"discount-offers-layer/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OfferEventChannel represents a subscription channel
type OfferEventChannel struct {
	ID     string
	Filter *OfferEventFilter
	Events chan *domain.OfferEvent
	ctx    context.Context
	cancel context.CancelFunc
}

// OfferEventFilter filters offer events
type OfferEventFilter struct {
	Shop  string   // Filter by shop domain
	Types []string // Filter by event types
}

// OfferPubSub fans offer lifecycle events out to subscribers, so the admin
// UI can refresh its dashboard without polling.
type OfferPubSub struct {
	mu       sync.RWMutex
	channels map[string]*OfferEventChannel
	logger   zerolog.Logger
}

// NewOfferPubSub creates a new offer event pub/sub system
func NewOfferPubSub(logger zerolog.Logger) *OfferPubSub {
	return &OfferPubSub{
		channels: make(map[string]*OfferEventChannel),
		logger:   logger,
	}
}

// Subscribe creates a new subscription channel. The subscription ends when
// the given context is cancelled.
func (ps *OfferPubSub) Subscribe(ctx context.Context, filter *OfferEventFilter) *OfferEventChannel {
	subCtx, cancel := context.WithCancel(ctx)

	channel := &OfferEventChannel{
		ID:     uuid.NewString(),
		Filter: filter,
		Events: make(chan *domain.OfferEvent, 10),
		ctx:    subCtx,
		cancel: cancel,
	}

	ps.mu.Lock()
	ps.channels[channel.ID] = channel
	ps.mu.Unlock()

	ps.logger.Debug().
		Str("channelId", channel.ID).
		Msg("Offer event subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(channel.ID)
	}()

	return channel
}

// Unsubscribe removes a subscription and closes its event channel
func (ps *OfferPubSub) Unsubscribe(id string) {
	ps.mu.Lock()
	channel, ok := ps.channels[id]
	if ok {
		delete(ps.channels, id)
	}
	ps.mu.Unlock()

	if ok {
		channel.cancel()
		close(channel.Events)
		ps.logger.Debug().
			Str("channelId", id).
			Msg("Offer event subscription removed")
	}
}

// Publish delivers an event to every matching subscriber. Slow subscribers
// with a full buffer are skipped rather than blocking the publisher.
func (ps *OfferPubSub) Publish(event *domain.OfferEvent) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, channel := range ps.channels {
		if !matches(channel.Filter, event) {
			continue
		}
		select {
		case channel.Events <- event:
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Str("shop", event.Shop).
				Msg("Dropping offer event for slow subscriber")
		}
	}
}

// SubscriberCount returns the number of active subscriptions
func (ps *OfferPubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.channels)
}

func matches(filter *OfferEventFilter, event *domain.OfferEvent) bool {
	if filter == nil {
		return true
	}
	if filter.Shop != "" && filter.Shop != event.Shop {
		return false
	}
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if t == event.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
