package ports

import (
	"context"

	shopify "github.com/bold-commerce/go-shopify/v4"
)

// ShopifyClient defines the interface for the platform API operations this
// app needs: the OAuth handshake, the post-install shop info fetch, and
// webhook subscription management.
type ShopifyClient interface {
	// Authentication
	GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error)
	ExchangeToken(ctx context.Context, shop string, code string, redirectURI string) (string, error)

	// Shop API
	GetShop(ctx context.Context, shop string, accessToken string) (*shopify.Shop, error)

	// Webhook API
	CreateWebhook(ctx context.Context, shop string, accessToken string, topic string, address string) (*shopify.Webhook, error)
	ListWebhooks(ctx context.Context, shop string, accessToken string) ([]shopify.Webhook, error)
	DeleteWebhook(ctx context.Context, shop string, accessToken string, webhookID int64) error
}
