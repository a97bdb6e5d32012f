package webhook_handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/ports"

	"github.com/rs/zerolog"
)

// ScopesUpdateHandler handles app/scopes_update webhook events by replacing
// the stored scope set with the payload's current scopes.
type ScopesUpdateHandler struct {
	logger   zerolog.Logger
	shopRepo ports.ShopRepository
}

// NewScopesUpdateHandler creates a new scopes update webhook handler
func NewScopesUpdateHandler(logger zerolog.Logger, shopRepo ports.ShopRepository) *ScopesUpdateHandler {
	return &ScopesUpdateHandler{
		logger:   logger,
		shopRepo: shopRepo,
	}
}

// CanHandle returns true if this handler can process the given topic
func (h *ScopesUpdateHandler) CanHandle(topic string) bool {
	return topic == domain.TopicScopesUpdate
}

// Handle processes a scopes update webhook event. The payload's "current"
// field arrives either as an array or a comma-separated string.
func (h *ScopesUpdateHandler) Handle(ctx context.Context, event *domain.WebhookEvent) error {
	if event.Shop == "" {
		return fmt.Errorf("scopes update webhook missing shop domain")
	}

	var payload struct {
		Current json.RawMessage `json:"current"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse scopes update payload: %w", err)
	}
	if len(payload.Current) == 0 {
		h.logger.Warn().
			Str("shop", event.Shop).
			Msg("Scopes update webhook without current scopes")
		return nil
	}

	var scopes []string
	if err := json.Unmarshal(payload.Current, &scopes); err != nil {
		var joined string
		if err := json.Unmarshal(payload.Current, &joined); err != nil {
			return fmt.Errorf("failed to parse current scopes: %w", err)
		}
		scopes = strings.Split(joined, ",")
	}

	if err := h.shopRepo.UpdateScopes(ctx, event.Shop, scopes); err != nil {
		return fmt.Errorf("failed to update shop scopes: %w", err)
	}

	h.logger.Info().
		Str("topic", event.Topic).
		Str("shop", event.Shop).
		Strs("scopes", scopes).
		Msg("Updated shop scopes")

	return nil
}
