package application

import (
	"context"
	"testing"

	"discount-offers-layer/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeOfferRepo is an in-memory OfferRepository keyed by (shop, id).
type fakeOfferRepo struct {
	offers map[string]map[string]*domain.Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[string]map[string]*domain.Offer)}
}

func (r *fakeOfferRepo) Create(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	stored := *offer
	if r.offers[offer.ShopDomain] == nil {
		r.offers[offer.ShopDomain] = make(map[string]*domain.Offer)
	}
	r.offers[offer.ShopDomain][offer.ID] = &stored
	return &stored, nil
}

func (r *fakeOfferRepo) ListByShop(ctx context.Context, shopDomain string) ([]*domain.Offer, error) {
	offers := []*domain.Offer{}
	for _, offer := range r.offers[shopDomain] {
		offers = append(offers, offer)
	}
	return offers, nil
}

func (r *fakeOfferRepo) GetByID(ctx context.Context, shopDomain, id string) (*domain.Offer, error) {
	offer, ok := r.offers[shopDomain][id]
	if !ok {
		return nil, nil
	}
	return offer, nil
}

func (r *fakeOfferRepo) Update(ctx context.Context, shopDomain, id string, fields map[string]interface{}) (*domain.Offer, error) {
	offer, ok := r.offers[shopDomain][id]
	if !ok {
		return nil, nil
	}
	if v, ok := fields["title"].(string); ok {
		offer.Title = v
	}
	if v, ok := fields["status"].(string); ok {
		offer.Status = v
	}
	if v, ok := fields["target"].(domain.Target); ok {
		offer.Target = v
	}
	if v, ok := fields["discount"].(domain.Discount); ok {
		offer.Discount = v
	}
	return offer, nil
}

func (r *fakeOfferRepo) Delete(ctx context.Context, shopDomain, id string) (bool, error) {
	if _, ok := r.offers[shopDomain][id]; !ok {
		return false, nil
	}
	delete(r.offers[shopDomain], id)
	return true, nil
}

// MockShopRepository is a mock implementation of ShopRepository
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) UpsertFromInstallation(ctx context.Context, shopDomain, accessToken string, scopes []string, info *domain.ShopInfo) (*domain.Shop, error) {
	args := m.Called(ctx, shopDomain, accessToken, scopes, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shop), args.Error(1)
}

func (m *MockShopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	args := m.Called(ctx, shopDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Shop), args.Error(1)
}

func (m *MockShopRepository) GetOwnerName(ctx context.Context, shopDomain string) (string, error) {
	args := m.Called(ctx, shopDomain)
	return args.String(0), args.Error(1)
}

func (m *MockShopRepository) MarkUninstalled(ctx context.Context, shopDomain string) error {
	args := m.Called(ctx, shopDomain)
	return args.Error(0)
}

func (m *MockShopRepository) UpdateScopes(ctx context.Context, shopDomain string, scopes []string) error {
	args := m.Called(ctx, shopDomain, scopes)
	return args.Error(0)
}

func (m *MockShopRepository) AddOfferReference(ctx context.Context, shopDomain, offerID, initialStatus string) error {
	args := m.Called(ctx, shopDomain, offerID, initialStatus)
	return args.Error(0)
}

// capturingPublisher records published offer events.
type capturingPublisher struct {
	events []*domain.OfferEvent
}

func (p *capturingPublisher) Publish(event *domain.OfferEvent) {
	p.events = append(p.events, event)
}

const testShop = "x.myshopify.com"

func validForm() OfferForm {
	return OfferForm{
		Title:         "Summer Sale",
		TargetType:    FormTargetAllProducts,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: "20",
	}
}

func newTestService(t *testing.T) (*OfferService, *fakeOfferRepo, *MockShopRepository, *capturingPublisher) {
	t.Helper()
	offerRepo := newFakeOfferRepo()
	shopRepo := new(MockShopRepository)
	events := &capturingPublisher{}
	svc := NewOfferService(offerRepo, shopRepo, nil, events, zerolog.Nop())
	return svc, offerRepo, shopRepo, events
}

func TestCreateOffer(t *testing.T) {
	svc, _, shopRepo, events := newTestService(t)
	shopRepo.On("AddOfferReference", mock.Anything, testShop, mock.Anything, domain.OfferStatusActive).Return(nil)

	offer, err := svc.CreateOffer(context.Background(), testShop, validForm())
	require.NoError(t, err)

	assert.Equal(t, domain.OfferStatusActive, offer.Status)
	assert.Equal(t, domain.Discount{Kind: domain.DiscountPercentage, Value: 20}, offer.Discount)
	assert.Equal(t, domain.TargetAll, offer.Target.TargetType)
	assert.Equal(t, testShop, offer.ShopDomain)

	shopRepo.AssertNumberOfCalls(t, "AddOfferReference", 1)
	require.Len(t, events.events, 1)
	assert.Equal(t, domain.OfferEventCreated, events.events[0].Type)
	assert.Equal(t, offer.ID, events.events[0].OfferID)
}

func TestCreateOfferPercentageOutOfRange(t *testing.T) {
	svc, offerRepo, shopRepo, _ := newTestService(t)

	form := validForm()
	form.DiscountValue = "150"

	_, err := svc.CreateOffer(context.Background(), testShop, form)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "discountValue")

	// No document persisted, no counter touched
	assert.Empty(t, offerRepo.offers[testShop])
	shopRepo.AssertNotCalled(t, "AddOfferReference", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOfferMissingProductSelection(t *testing.T) {
	svc, offerRepo, _, _ := newTestService(t)

	form := validForm()
	form.TargetType = FormTargetSpecificProduct

	_, err := svc.CreateOffer(context.Background(), testShop, form)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "product")
	assert.Empty(t, offerRepo.offers[testShop])
}

func TestCreateOfferToleratesCounterFailure(t *testing.T) {
	svc, _, shopRepo, _ := newTestService(t)
	shopRepo.On("AddOfferReference", mock.Anything, testShop, mock.Anything, domain.OfferStatusActive).
		Return(&domain.PersistenceError{Op: "failed to add offer reference"})

	// Offer creation wins; counter drift is tolerated
	offer, err := svc.CreateOffer(context.Background(), testShop, validForm())
	require.NoError(t, err)
	assert.NotEmpty(t, offer.ID)
}

func TestTenantIsolation(t *testing.T) {
	svc, _, shopRepo, _ := newTestService(t)
	shopRepo.On("AddOfferReference", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	offer, err := svc.CreateOffer(context.Background(), testShop, validForm())
	require.NoError(t, err)

	_, err = svc.GetOffer(context.Background(), "other.myshopify.com", offer.ID)

	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestToggleOfferStatus(t *testing.T) {
	svc, _, shopRepo, events := newTestService(t)
	shopRepo.On("AddOfferReference", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	offer, err := svc.CreateOffer(context.Background(), testShop, validForm())
	require.NoError(t, err)

	toggled, err := svc.ToggleOfferStatus(context.Background(), testShop, offer.ID, domain.OfferStatusPaused)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusPaused, toggled.Status)

	got, err := svc.GetOffer(context.Background(), testShop, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusPaused, got.Status)

	// Toggling to the same status twice is a semantic no-op
	again, err := svc.ToggleOfferStatus(context.Background(), testShop, offer.ID, domain.OfferStatusPaused)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferStatusPaused, again.Status)

	require.Len(t, events.events, 3)
	assert.Equal(t, domain.OfferEventToggled, events.events[1].Type)
}

func TestToggleOfferStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.ToggleOfferStatus(context.Background(), testShop, "off_1_abcdef", "expired")

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestToggleOfferStatusNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.ToggleOfferStatus(context.Background(), testShop, "off_nonexistent", domain.OfferStatusPaused)

	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestDeleteOfferIdempotence(t *testing.T) {
	svc, _, shopRepo, events := newTestService(t)
	shopRepo.On("AddOfferReference", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	offer, err := svc.CreateOffer(context.Background(), testShop, validForm())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOffer(context.Background(), testShop, offer.ID))

	// Second delete reports not-found, not a failure
	err = svc.DeleteOffer(context.Background(), testShop, offer.ID)
	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)

	require.Len(t, events.events, 2)
	deleted := events.events[1]
	assert.Equal(t, domain.OfferEventDeleted, deleted.Type)
	assert.Equal(t, offer.ID, deleted.OfferID)
	assert.Nil(t, deleted.Offer)
}

func TestDeleteOfferNonexistent(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.DeleteOffer(context.Background(), testShop, "off_nonexistent")

	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestUpdateOffer(t *testing.T) {
	svc, _, shopRepo, _ := newTestService(t)
	shopRepo.On("AddOfferReference", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	offer, err := svc.CreateOffer(context.Background(), testShop, validForm())
	require.NoError(t, err)

	form := validForm()
	form.Title = "Winter Sale"
	form.DiscountValue = "30"

	updated, err := svc.UpdateOffer(context.Background(), testShop, offer.ID, form)
	require.NoError(t, err)

	assert.Equal(t, offer.ID, updated.ID)
	assert.Equal(t, "Winter Sale", updated.Title)
	assert.Equal(t, 30.0, updated.Discount.Value)
}

func TestUpdateOfferNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.UpdateOffer(context.Background(), testShop, "off_nonexistent", validForm())

	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestListOffersEmpty(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	offers, err := svc.ListOffers(context.Background(), testShop)
	require.NoError(t, err)
	assert.NotNil(t, offers)
	assert.Empty(t, offers)
}

func TestGetOfferFormNew(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	form, err := svc.GetOfferForm(context.Background(), testShop, NewOfferPathID)
	require.NoError(t, err)
	assert.Equal(t, NewOfferForm(), form)
}

func TestGetOfferFormExisting(t *testing.T) {
	svc, _, shopRepo, _ := newTestService(t)
	shopRepo.On("AddOfferReference", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	offer, err := svc.CreateOffer(context.Background(), testShop, validForm())
	require.NoError(t, err)

	form, err := svc.GetOfferForm(context.Background(), testShop, offer.ID)
	require.NoError(t, err)

	assert.Equal(t, offer.ID, form.ID)
	assert.Equal(t, "Summer Sale", form.Title)
	assert.Equal(t, FormTargetAllProducts, form.TargetType)
	assert.Equal(t, "20", form.DiscountValue)
}

// fakeCache counts cache traffic for the list read-through path.
type fakeCache struct {
	lists         map[string][]*domain.Offer
	invalidations int
}

func (c *fakeCache) GetList(ctx context.Context, shopDomain string) ([]*domain.Offer, bool) {
	offers, ok := c.lists[shopDomain]
	return offers, ok
}

func (c *fakeCache) SetList(ctx context.Context, shopDomain string, offers []*domain.Offer) {
	if c.lists == nil {
		c.lists = make(map[string][]*domain.Offer)
	}
	c.lists[shopDomain] = offers
}

func (c *fakeCache) Invalidate(ctx context.Context, shopDomain string) {
	delete(c.lists, shopDomain)
	c.invalidations++
}

func TestListOffersCacheReadThrough(t *testing.T) {
	offerRepo := newFakeOfferRepo()
	shopRepo := new(MockShopRepository)
	shopRepo.On("AddOfferReference", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	cache := &fakeCache{}
	svc := NewOfferService(offerRepo, shopRepo, cache, nil, zerolog.Nop())

	offer, err := svc.CreateOffer(context.Background(), testShop, validForm())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)

	// First list warms the cache, second is served from it
	offers, err := svc.ListOffers(context.Background(), testShop)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Contains(t, cache.lists, testShop)

	cached, err := svc.ListOffers(context.Background(), testShop)
	require.NoError(t, err)
	assert.Equal(t, offers, cached)

	// Mutations drop the cached listing
	require.NoError(t, svc.DeleteOffer(context.Background(), testShop, offer.ID))
	assert.NotContains(t, cache.lists, testShop)
}
