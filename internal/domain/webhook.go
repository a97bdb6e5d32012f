package domain

import "time"

// Webhook topics this app subscribes to.
const (
	TopicAppUninstalled = "app/uninstalled"
	TopicScopesUpdate   = "app/scopes_update"
)

// WebhookEvent is a verified webhook delivery from the platform.
type WebhookEvent struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Shop       string    `json:"shop"`
	Payload    []byte    `json:"payload"`
	Verified   bool      `json:"verified"`
	ReceivedAt time.Time `json:"received_at"`
}

// Offer lifecycle event types published to subscribers.
const (
	OfferEventCreated = "created"
	OfferEventUpdated = "updated"
	OfferEventToggled = "toggled"
	OfferEventDeleted = "deleted"
)

// OfferEvent is published whenever an offer changes, so the admin UI can
// refresh without polling. Offer is nil for deleted events.
type OfferEvent struct {
	Type       string    `json:"type"`
	Shop       string    `json:"shop"`
	OfferID    string    `json:"offerId"`
	Offer      *Offer    `json:"offer,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
