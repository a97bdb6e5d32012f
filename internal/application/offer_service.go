package application

import (
	"context"
	"time"

	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/ports"

	"github.com/rs/zerolog"
)

// OfferService implements the offer lifecycle: create, update, toggle,
// delete, list, get. It depends on ports (interfaces) not concrete
// implementations. Every operation is scoped by the shop domain supplied by
// the authenticated session; the service trusts that value.
type OfferService struct {
	offerRepo ports.OfferRepository
	shopRepo  ports.ShopRepository
	cache     ports.OfferCache
	events    ports.OfferEventPublisher
	logger    zerolog.Logger
}

// NewOfferService creates a new offer lifecycle service. Cache and events
// may be nil; both are optional fan-out concerns.
func NewOfferService(
	offerRepo ports.OfferRepository,
	shopRepo ports.ShopRepository,
	cache ports.OfferCache,
	events ports.OfferEventPublisher,
	logger zerolog.Logger,
) *OfferService {
	return &OfferService{
		offerRepo: offerRepo,
		shopRepo:  shopRepo,
		cache:     cache,
		events:    events,
		logger:    logger,
	}
}

// CreateOffer validates the flat form, transforms it into a document, and
// persists it. The shop-side offer reference is added exactly once, after
// the offer write succeeds; a failure there is logged and tolerated (the
// counters are a display hint, the offers collection is the truth).
func (s *OfferService) CreateOffer(ctx context.Context, shopDomain string, form OfferForm) (*domain.Offer, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	doc := ToDocument(form, shopDomain, NewOfferPathID)

	created, err := s.offerRepo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}

	if err := s.shopRepo.AddOfferReference(ctx, shopDomain, created.ID, created.Status); err != nil {
		s.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Str("offerId", created.ID).
			Msg("Failed to add offer reference to shop")
	}

	s.invalidate(ctx, shopDomain)
	s.publish(domain.OfferEventCreated, created)
	offersCreated.Inc()

	s.logger.Info().
		Str("shop", shopDomain).
		Str("offerId", created.ID).
		Str("status", created.Status).
		Msg("Offer created")

	return created, nil
}

// UpdateOffer validates the flat form and overwrites the offer's form-owned
// fields. Nested objects (target, discount) are replaced wholesale.
func (s *OfferService) UpdateOffer(ctx context.Context, shopDomain, id string, form OfferForm) (*domain.Offer, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	doc := ToDocument(form, shopDomain, id)

	fields := map[string]interface{}{
		"title":    doc.Title,
		"status":   doc.Status,
		"target":   doc.Target,
		"discount": doc.Discount,
	}

	updated, err := s.offerRepo.Update(ctx, shopDomain, id, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &domain.NotFoundError{Resource: "offer", ID: id}
	}

	s.invalidate(ctx, shopDomain)
	s.publish(domain.OfferEventUpdated, updated)

	s.logger.Info().
		Str("shop", shopDomain).
		Str("offerId", id).
		Msg("Offer updated")

	return updated, nil
}

// ToggleOfferStatus flips an offer between active and paused. Any other
// requested status is rejected; expired offers are reactivated by toggling
// to active.
func (s *OfferService) ToggleOfferStatus(ctx context.Context, shopDomain, id, newStatus string) (*domain.Offer, error) {
	if newStatus != domain.OfferStatusActive && newStatus != domain.OfferStatusPaused {
		return nil, domain.NewValidationError("status", "status must be active or paused")
	}

	updated, err := s.offerRepo.Update(ctx, shopDomain, id, map[string]interface{}{
		"status": newStatus,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &domain.NotFoundError{Resource: "offer", ID: id}
	}

	s.invalidate(ctx, shopDomain)
	s.publish(domain.OfferEventToggled, updated)
	offerStatusToggles.WithLabelValues(newStatus).Inc()

	s.logger.Info().
		Str("shop", shopDomain).
		Str("offerId", id).
		Str("status", newStatus).
		Msg("Offer status toggled")

	return updated, nil
}

// DeleteOffer hard-deletes an offer. Deleting an already-deleted offer
// returns NotFoundError; the shop-side counters are deliberately left
// untouched.
func (s *OfferService) DeleteOffer(ctx context.Context, shopDomain, id string) error {
	deleted, err := s.offerRepo.Delete(ctx, shopDomain, id)
	if err != nil {
		return err
	}
	if !deleted {
		return &domain.NotFoundError{Resource: "offer", ID: id}
	}

	s.invalidate(ctx, shopDomain)
	if s.events != nil {
		s.events.Publish(&domain.OfferEvent{
			Type:       domain.OfferEventDeleted,
			Shop:       shopDomain,
			OfferID:    id,
			OccurredAt: time.Now(),
		})
	}
	offersDeleted.Inc()

	s.logger.Info().
		Str("shop", shopDomain).
		Str("offerId", id).
		Msg("Offer deleted")

	return nil
}

// ListOffers returns all offers for the shop, via the cache when warm.
func (s *OfferService) ListOffers(ctx context.Context, shopDomain string) ([]*domain.Offer, error) {
	if s.cache != nil {
		if offers, ok := s.cache.GetList(ctx, shopDomain); ok {
			return offers, nil
		}
	}

	offers, err := s.offerRepo.ListByShop(ctx, shopDomain)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetList(ctx, shopDomain, offers)
	}

	return offers, nil
}

// GetOffer returns a single offer or NotFoundError. A valid id belonging to
// another shop is indistinguishable from a missing one.
func (s *OfferService) GetOffer(ctx context.Context, shopDomain, id string) (*domain.Offer, error) {
	offer, err := s.offerRepo.GetByID(ctx, shopDomain, id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, &domain.NotFoundError{Resource: "offer", ID: id}
	}
	return offer, nil
}

// GetOfferForm returns the flat form the edit page loads: defaults for
// "new", the transformed document otherwise.
func (s *OfferService) GetOfferForm(ctx context.Context, shopDomain, id string) (OfferForm, error) {
	if id == NewOfferPathID {
		return NewOfferForm(), nil
	}

	offer, err := s.GetOffer(ctx, shopDomain, id)
	if err != nil {
		return OfferForm{}, err
	}

	return ToFormView(offer), nil
}

func (s *OfferService) invalidate(ctx context.Context, shopDomain string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, shopDomain)
	}
}

func (s *OfferService) publish(eventType string, offer *domain.Offer) {
	if s.events == nil {
		return
	}
	s.events.Publish(&domain.OfferEvent{
		Type:       eventType,
		Shop:       offer.ShopDomain,
		OfferID:    offer.ID,
		Offer:      offer,
		OccurredAt: time.Now(),
	})
}
