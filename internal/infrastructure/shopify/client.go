package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"discount-offers-layer/internal/ports"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

type client struct {
	apiKey    string
	apiSecret string
	app       goshopify.App
	logger    zerolog.Logger
}

// NewClient creates a new Shopify client adapter
func NewClient(apiKey, apiSecret string, logger zerolog.Logger) ports.ShopifyClient {
	app := goshopify.App{
		ApiKey:    apiKey,
		ApiSecret: apiSecret,
	}
	return &client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		app:       app,
		logger:    logger,
	}
}

// createClient is a helper to create a goshopify client
func (c *client) createClient(shopDomain string, accessToken string) (*goshopify.Client, error) {
	cl, err := goshopify.NewClient(c.app, shopDomain, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return cl, nil
}

// Authentication methods

func (c *client) GenerateAuthURL(shop string, scopes []string, redirectURI string, state string) (string, error) {
	// Shopify expects scopes to be comma-separated (no spaces)
	scopesStr := strings.Join(scopes, ",")

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		shop,
		c.apiKey,
		url.QueryEscape(scopesStr),
		url.QueryEscape(redirectURI),
		url.QueryEscape(state),
	)

	c.logger.Info().
		Str("shop", shop).
		Str("scopes", scopesStr).
		Msg("Generated OAuth authorization URL")

	return authURL, nil
}

func (c *client) ExchangeToken(ctx context.Context, shop string, code string, redirectURI string) (string, error) {
	// Shopify requires the redirect_uri to match the one used in
	// authorization; the go-shopify GetAccessToken helper doesn't expose it,
	// so make a direct call to the token endpoint when one is given.
	if redirectURI != "" {
		tokenURL := fmt.Sprintf("https://%s/admin/oauth/access_token", shop)

		values := url.Values{}
		values.Set("client_id", c.apiKey)
		values.Set("client_secret", c.apiSecret)
		values.Set("code", code)
		values.Set("redirect_uri", redirectURI)

		req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, strings.NewReader(values.Encode()))
		if err != nil {
			return "", fmt.Errorf("failed to create token request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to exchange token: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			bodyBytes, _ := io.ReadAll(resp.Body)
			return "", fmt.Errorf("failed to exchange token: status %d, body: %s", resp.StatusCode, string(bodyBytes))
		}

		var tokenResponse struct {
			AccessToken string `json:"access_token"`
			Scope       string `json:"scope"`
		}

		if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
			return "", fmt.Errorf("failed to decode token response: %w", err)
		}

		return tokenResponse.AccessToken, nil
	}

	token, err := c.app.GetAccessToken(ctx, shop, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}
	return token, nil
}

// Shop API

func (c *client) GetShop(ctx context.Context, shopDomain string, accessToken string) (*goshopify.Shop, error) {
	cl, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	shop, err := cl.Shop.Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

// Webhook API

func (c *client) CreateWebhook(ctx context.Context, shopDomain string, accessToken string, topic string, address string) (*goshopify.Webhook, error) {
	cl, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	webhook := goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}
	created, err := cl.Webhook.Create(ctx, webhook)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook: %w", err)
	}
	return created, nil
}

func (c *client) ListWebhooks(ctx context.Context, shopDomain string, accessToken string) ([]goshopify.Webhook, error) {
	cl, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}
	webhooks, err := cl.Webhook.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	return webhooks, nil
}

func (c *client) DeleteWebhook(ctx context.Context, shopDomain string, accessToken string, webhookID int64) error {
	cl, err := c.createClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	if err := cl.Webhook.Delete(ctx, uint64(webhookID)); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	return nil
}
