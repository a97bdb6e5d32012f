package domain

import "context"

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const shopDomainKey contextKey = "shop_domain"

// WithShopDomain returns a context carrying the authenticated shop domain.
func WithShopDomain(ctx context.Context, shopDomain string) context.Context {
	return context.WithValue(ctx, shopDomainKey, shopDomain)
}

// GetShopDomainFromContext returns the authenticated shop domain, or ""
// when the request was not authenticated.
func GetShopDomainFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(shopDomainKey).(string); ok {
		return v
	}
	return ""
}
