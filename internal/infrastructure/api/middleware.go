package api

import (
	"net/http"

	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/ports"

	"github.com/rs/zerolog"
)

// ShopSessionMiddleware resolves the authenticated shop for every /api
// request. The embedded-app frontend proxy verifies the session token and
// forwards the shop domain in X-Shop-Domain; this middleware checks the
// shop is actually installed and puts the domain on the request context.
func ShopSessionMiddleware(shopRepo ports.ShopRepository, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shopDomain := r.Header.Get("X-Shop-Domain")
			if shopDomain == "" {
				writeJSON(w, http.StatusBadRequest, errorResponse{
					Success: false,
					Error:   "X-Shop-Domain header is required",
				})
				return
			}

			shop, err := shopRepo.GetByDomain(r.Context(), shopDomain)
			if err != nil {
				logger.Error().
					Err(err).
					Str("shop", shopDomain).
					Msg("Failed to resolve shop session")
				writeJSON(w, http.StatusInternalServerError, errorResponse{
					Success: false,
					Error:   "failed to resolve shop",
				})
				return
			}
			if shop == nil || shop.InstalledStatus != domain.InstalledStatusInstalled {
				writeJSON(w, http.StatusUnauthorized, errorResponse{
					Success: false,
					Error:   "shop is not installed",
				})
				return
			}

			ctx := domain.WithShopDomain(r.Context(), shopDomain)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
