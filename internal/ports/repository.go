package ports

import (
	"context"

	"discount-offers-layer/internal/domain"
)

// OfferRepository defines the interface for offer persistence.
// Every read and write is scoped by the owning shop domain; an id belonging
// to another shop must behave exactly like a missing id.
type OfferRepository interface {
	// Create persists a new offer and returns the stored document with
	// assigned timestamps.
	Create(ctx context.Context, offer *domain.Offer) (*domain.Offer, error)

	// ListByShop returns all offers for a shop; an empty slice when none
	// exist. Order is not guaranteed.
	ListByShop(ctx context.Context, shopDomain string) ([]*domain.Offer, error)

	// GetByID returns the offer, or (nil, nil) when no offer matches the
	// (shopDomain, id) pair.
	GetByID(ctx context.Context, shopDomain, id string) (*domain.Offer, error)

	// Update applies a flat $set of the given fields and returns the
	// post-update document, or (nil, nil) when no offer matches. Nested
	// objects are replaced wholesale, never merged.
	Update(ctx context.Context, shopDomain, id string, fields map[string]interface{}) (*domain.Offer, error)

	// Delete removes the offer. Returns false when nothing matched;
	// deleting twice is not an error.
	Delete(ctx context.Context, shopDomain, id string) (bool, error)
}

// ShopRepository defines the interface for shop installation records.
type ShopRepository interface {
	// UpsertFromInstallation creates or refreshes the shop record after
	// OAuth completes. Offer references and stats are initialized only on
	// insert and never cleared on re-install.
	UpsertFromInstallation(ctx context.Context, shopDomain, accessToken string, scopes []string, info *domain.ShopInfo) (*domain.Shop, error)

	// GetByDomain returns the shop, or (nil, nil) when not installed.
	GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error)

	// GetOwnerName returns the stored owner name, or "" when unknown.
	GetOwnerName(ctx context.Context, shopDomain string) (string, error)

	// MarkUninstalled flips the shop to uninstalled/paused. The record is
	// kept for history.
	MarkUninstalled(ctx context.Context, shopDomain string) error

	// UpdateScopes replaces the granted scope set.
	UpdateScopes(ctx context.Context, shopDomain string, scopes []string) error

	// AddOfferReference adds the offer id to the shop's offer set and
	// increments the stats counters. The set-add is idempotent but the
	// increments are not; call exactly once per created offer.
	AddOfferReference(ctx context.Context, shopDomain, offerID, initialStatus string) error
}

// SessionRepository defines the interface for OAuth session persistence.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, state string) (*domain.Session, error)
	DeleteSession(ctx context.Context, state string) error
}

// WebhookEventRepository persists verified webhook deliveries for audit and
// replay. Recording is best-effort; processing never depends on it.
type WebhookEventRepository interface {
	Record(ctx context.Context, event *domain.WebhookEvent) error
}

// OfferCache caches per-shop offer listings. Implementations must treat
// every failure as a miss; the cache is an optimization, never a source of
// truth.
type OfferCache interface {
	GetList(ctx context.Context, shopDomain string) ([]*domain.Offer, bool)
	SetList(ctx context.Context, shopDomain string, offers []*domain.Offer)
	Invalidate(ctx context.Context, shopDomain string)
}

// OfferEventPublisher fans offer lifecycle events out to subscribers.
type OfferEventPublisher interface {
	Publish(event *domain.OfferEvent)
}
