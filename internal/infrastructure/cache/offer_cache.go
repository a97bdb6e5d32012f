package cache

import (
	"context"
	"encoding/json"
	"time"

	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const listTTL = 30 * time.Second

// RedisOfferCache caches per-shop offer listings in Redis. Every failure is
// treated as a miss; the offers collection stays the source of truth and
// the TTL bounds staleness from missed invalidations.
type RedisOfferCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisOfferCache creates a new Redis offer cache
func NewRedisOfferCache(client *redis.Client, logger zerolog.Logger) ports.OfferCache {
	return &RedisOfferCache{
		client: client,
		logger: logger,
	}
}

func listKey(shopDomain string) string {
	return "offers:list:" + shopDomain
}

// GetList returns the cached listing for a shop, or (nil, false) on a miss
func (c *RedisOfferCache) GetList(ctx context.Context, shopDomain string) ([]*domain.Offer, bool) {
	data, err := c.client.Get(ctx, listKey(shopDomain)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Msg("Offer cache read failed")
		return nil, false
	}

	var offers []*domain.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		c.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Msg("Offer cache entry corrupt, dropping")
		c.client.Del(ctx, listKey(shopDomain))
		return nil, false
	}

	return offers, true
}

// SetList stores the listing for a shop with a short TTL
func (c *RedisOfferCache) SetList(ctx context.Context, shopDomain string, offers []*domain.Offer) {
	data, err := json.Marshal(offers)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Msg("Failed to encode offer cache entry")
		return
	}

	if err := c.client.Set(ctx, listKey(shopDomain), data, listTTL).Err(); err != nil {
		c.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Msg("Offer cache write failed")
	}
}

// Invalidate drops the cached listing for a shop
func (c *RedisOfferCache) Invalidate(ctx context.Context, shopDomain string) {
	if err := c.client.Del(ctx, listKey(shopDomain)).Err(); err != nil {
		c.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Msg("Offer cache invalidation failed")
	}
}
