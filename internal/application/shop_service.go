package application

import (
	"context"
	"fmt"

	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/ports"

	"github.com/rs/zerolog"
)

// ShopService implements the installation-side business logic: completing
// OAuth, keeping the shop record current, and registering webhooks.
// It depends on ports (interfaces) not concrete implementations.
type ShopService struct {
	shopRepo       ports.ShopRepository
	client         ports.ShopifyClient
	logger         zerolog.Logger
	webhookAddress string
	redirectURI    string
}

// NewShopService creates a new shop application service
func NewShopService(
	shopRepo ports.ShopRepository,
	client ports.ShopifyClient,
	logger zerolog.Logger,
	appURL string,
) *ShopService {
	return &ShopService{
		shopRepo:       shopRepo,
		client:         client,
		logger:         logger,
		webhookAddress: appURL + "/webhooks/shopify",
		redirectURI:    appURL + "/auth/callback",
	}
}

// GenerateAuthURL builds the OAuth authorization URL for a shop.
func (s *ShopService) GenerateAuthURL(shop string, scopes []string, state string) (string, error) {
	authURL, err := s.client.GenerateAuthURL(shop, scopes, s.redirectURI, state)
	if err != nil {
		return "", fmt.Errorf("failed to generate auth url: %w", err)
	}
	return authURL, nil
}

// CompleteInstallation exchanges the authorization code, fetches shop info
// from the platform, and upserts the shop record. A failed shop info fetch
// does not fail the installation; the record is upserted without it.
func (s *ShopService) CompleteInstallation(ctx context.Context, shop, code string, scopes []string) (*domain.Shop, error) {
	accessToken, err := s.client.ExchangeToken(ctx, shop, code, s.redirectURI)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	var info *domain.ShopInfo
	platformShop, err := s.client.GetShop(ctx, shop, accessToken)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("shop", shop).
			Msg("Failed to fetch shop info after OAuth")
	} else {
		info = &domain.ShopInfo{
			Name:         platformShop.Name,
			Email:        platformShop.Email,
			ContactEmail: platformShop.CustomerEmail,
			CurrencyCode: platformShop.Currency,
			PlanName:     platformShop.PlanName,
		}
	}

	saved, err := s.shopRepo.UpsertFromInstallation(ctx, shop, accessToken, scopes, info)
	if err != nil {
		return nil, fmt.Errorf("failed to save shop: %w", err)
	}

	s.logger.Info().
		Str("shop", shop).
		Strs("scopes", scopes).
		Msg("Installation completed")

	return saved, nil
}

// RegisterWebhooks subscribes to the topics this app depends on, skipping
// subscriptions that already exist.
func (s *ShopService) RegisterWebhooks(ctx context.Context, shop, accessToken string) error {
	topics := []string{domain.TopicAppUninstalled, domain.TopicScopesUpdate}

	existing, err := s.client.ListWebhooks(ctx, shop, accessToken)
	if err != nil {
		return fmt.Errorf("failed to list webhooks: %w", err)
	}

	registered := map[string]bool{}
	for _, hook := range existing {
		registered[hook.Topic] = true
	}

	for _, topic := range topics {
		if registered[topic] {
			continue
		}
		if _, err := s.client.CreateWebhook(ctx, shop, accessToken, topic, s.webhookAddress); err != nil {
			return fmt.Errorf("failed to create %s webhook: %w", topic, err)
		}
		s.logger.Info().
			Str("shop", shop).
			Str("topic", topic).
			Msg("Registered webhook")
	}

	return nil
}

// GetShop returns the stored shop record, or NotFoundError.
func (s *ShopService) GetShop(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	shop, err := s.shopRepo.GetByDomain(ctx, shopDomain)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, &domain.NotFoundError{Resource: "shop", ID: shopDomain}
	}
	return shop, nil
}

// GetOwnerName returns the shop owner name for the dashboard greeting,
// falling back to "Store Owner" when unknown.
func (s *ShopService) GetOwnerName(ctx context.Context, shopDomain string) string {
	name, err := s.shopRepo.GetOwnerName(ctx, shopDomain)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("shop", shopDomain).
			Msg("Failed to get shop owner name")
	}
	if name == "" {
		return "Store Owner"
	}
	return name
}
