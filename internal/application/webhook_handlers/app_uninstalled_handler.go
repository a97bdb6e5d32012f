package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/ports"

	"github.com/rs/zerolog"
)

// AppUninstalledHandler handles app uninstalled webhook events. The shop
// record is marked uninstalled and kept; offers stay in place in case the
// merchant reinstalls.
type AppUninstalledHandler struct {
	logger   zerolog.Logger
	shopRepo ports.ShopRepository
}

// NewAppUninstalledHandler creates a new app uninstalled webhook handler
func NewAppUninstalledHandler(logger zerolog.Logger, shopRepo ports.ShopRepository) *AppUninstalledHandler {
	return &AppUninstalledHandler{
		logger:   logger,
		shopRepo: shopRepo,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *AppUninstalledHandler) CanHandle(topic string) bool {
	return topic == domain.TopicAppUninstalled
}

// Handle processes an app uninstalled webhook event
func (h *AppUninstalledHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	shopDomain := event.Shop
	if shopDomain == "" {
		var payload map[string]interface{}
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return fmt.Errorf("failed to parse app uninstalled payload: %w", err)
		}
		if v, ok := payload["domain"].(string); ok {
			shopDomain = v
		} else if v, ok := payload["myshopify_domain"].(string); ok {
			shopDomain = v
		}
	}

	if shopDomain == "" {
		return fmt.Errorf("app uninstalled webhook missing shop domain")
	}

	if err := h.shopRepo.MarkUninstalled(ctx, shopDomain); err != nil {
		return fmt.Errorf("failed to mark shop uninstalled: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", shopDomain).
		Msg("Marked shop as uninstalled")

	return nil
}
