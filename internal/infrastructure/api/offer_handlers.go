package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"discount-offers-layer/internal/application"
	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/infrastructure/pubsub"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OfferHandlers exposes the offer lifecycle over REST for the admin UI.
// Route shapes mirror the UI's loader/action contract: the dashboard loads
// a greeting plus the offer list, the edit page loads and saves flat forms.
type OfferHandlers struct {
	offers *application.OfferService
	shops  *application.ShopService
	events *pubsub.OfferPubSub
	logger zerolog.Logger
}

// NewOfferHandlers creates the REST handlers for offers
func NewOfferHandlers(
	offers *application.OfferService,
	shops *application.ShopService,
	events *pubsub.OfferPubSub,
	logger zerolog.Logger,
) *OfferHandlers {
	return &OfferHandlers{
		offers: offers,
		shops:  shops,
		events: events,
		logger: logger,
	}
}

// Routes mounts the offer API onto a chi router
func (h *OfferHandlers) Routes(r chi.Router) {
	r.Get("/offers", h.ListOffers)
	r.Post("/offers", h.CreateOffer)
	r.Get("/offers/events", h.StreamEvents)
	r.Get("/offers/{id}", h.GetOfferForm)
	r.Put("/offers/{id}", h.UpdateOffer)
	r.Post("/offers/{id}/toggle", h.ToggleOfferStatus)
	r.Delete("/offers/{id}", h.DeleteOffer)
}

// ListOffers returns the dashboard payload: greeting name plus all offers.
func (h *OfferHandlers) ListOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopDomain := domain.GetShopDomainFromContext(ctx)

	offers, err := h.offers.ListOffers(ctx, shopDomain)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"shopOwnerName": h.shops.GetOwnerName(ctx, shopDomain),
		"offers":        offers,
	})
}

// GetOfferForm returns the flat form for the edit page. The id "new"
// returns the blank defaults.
func (h *OfferHandlers) GetOfferForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopDomain := domain.GetShopDomainFromContext(ctx)
	id := chi.URLParam(r, "id")

	form, err := h.offers.GetOfferForm(ctx, shopDomain, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// CreateOffer creates an offer from a flat form and returns its id.
func (h *OfferHandlers) CreateOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopDomain := domain.GetShopDomainFromContext(ctx)

	var form application.OfferForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	offer, err := h.offers.CreateOffer(ctx, shopDomain, form)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      offer.ID,
	})
}

// UpdateOffer overwrites an offer's form-owned fields and returns the
// post-update document.
func (h *OfferHandlers) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopDomain := domain.GetShopDomainFromContext(ctx)
	id := chi.URLParam(r, "id")

	var form application.OfferForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	offer, err := h.offers.UpdateOffer(ctx, shopDomain, id, form)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"offer":   offer,
	})
}

// ToggleOfferStatus flips an offer between active and paused.
func (h *OfferHandlers) ToggleOfferStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopDomain := domain.GetShopDomainFromContext(ctx)
	id := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	if _, err := h.offers.ToggleOfferStatus(ctx, shopDomain, id, body.Status); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteOffer hard-deletes an offer.
func (h *OfferHandlers) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopDomain := domain.GetShopDomainFromContext(ctx)
	id := chi.URLParam(r, "id")

	if err := h.offers.DeleteOffer(ctx, shopDomain, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// StreamEvents streams offer lifecycle events for the shop as SSE, so the
// dashboard can refresh without polling.
func (h *OfferHandlers) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	shopDomain := domain.GetShopDomainFromContext(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	channel := h.events.Subscribe(ctx, &pubsub.OfferEventFilter{Shop: shopDomain})

	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-channel.Events:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error().
					Err(err).
					Str("shop", shopDomain).
					Msg("Failed to encode offer event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
