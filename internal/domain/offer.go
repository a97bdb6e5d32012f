package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// Offer statuses
const (
	OfferStatusActive  = "active"
	OfferStatusPaused  = "paused"
	OfferStatusExpired = "expired"
)

// Target types
const (
	TargetAll        = "all"
	TargetProduct    = "product"
	TargetCollection = "collection"
)

// Discount kinds
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Metafield defaults used when syncing offers to the storefront
const (
	DefaultMetafieldNamespace = "discount_app"
	DefaultMetafieldKey       = "offer"
)

// Offer represents a discount offer scoped to a single shop.
// Offers are keyed by a generated string id, never by ObjectID, so the id
// round-trips unchanged through the admin UI and storefront metafields.
type Offer struct {
	ID         string             `json:"id" bson:"_id"`
	ShopDomain string             `json:"shop" bson:"shop"`
	Title      string             `json:"title" bson:"title"`
	Status     string             `json:"status" bson:"status"`
	Target     Target             `json:"target" bson:"target"`
	Discount   Discount           `json:"discount" bson:"discount"`
	Shopify    ShopifyIntegration `json:"shopify" bson:"shopify"`
	Widget     *WidgetSettings    `json:"widget,omitempty" bson:"widget,omitempty"`
	Schedule   *Schedule          `json:"schedule,omitempty" bson:"schedule,omitempty"`
	Analytics  *OfferAnalytics    `json:"analytics,omitempty" bson:"analytics,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updatedAt"`
}

// Target describes which catalog items an offer applies to.
// Exactly one of the payloads is meaningful, selected by TargetType.
type Target struct {
	TargetType  string             `json:"targetType" bson:"targetType"`
	Products    []ProductTarget    `json:"products,omitempty" bson:"products"`
	Collections []CollectionTarget `json:"collections,omitempty" bson:"collections"`
}

// ProductTarget is a denormalized product snapshot, not a live reference.
type ProductTarget struct {
	ProductID string `json:"productId" bson:"productId"`
	Title     string `json:"title" bson:"title"`
	Handle    string `json:"handle" bson:"handle"`
	Image     string `json:"image" bson:"image"`
	VariantID string `json:"variantId" bson:"variantId"`
}

// CollectionTarget is a denormalized collection snapshot.
type CollectionTarget struct {
	CollectionID string `json:"collectionId" bson:"collectionId"`
	Title        string `json:"title" bson:"title"`
	Handle       string `json:"handle" bson:"handle"`
}

// Discount holds the discount kind and value. Currency is only meaningful
// for fixed discounts; when empty the shop's default currency applies.
type Discount struct {
	Kind     string  `json:"type" bson:"type"`
	Value    float64 `json:"value" bson:"value"`
	Currency string  `json:"currency,omitempty" bson:"currency,omitempty"`
}

// ShopifyIntegration tracks the storefront metafield sync state.
type ShopifyIntegration struct {
	MetafieldNamespace string `json:"metafieldNamespace" bson:"metafieldNamespace"`
	MetafieldKey       string `json:"metafieldKey" bson:"metafieldKey"`
	MetafieldsApplied  bool   `json:"metafieldsApplied" bson:"metafieldsApplied"`
}

// WidgetSettings controls the storefront widget rendering for an offer.
type WidgetSettings struct {
	Enabled  bool   `json:"enabled" bson:"enabled"`
	Position string `json:"position,omitempty" bson:"position,omitempty"`
	Label    string `json:"label,omitempty" bson:"label,omitempty"`
}

// Schedule bounds when an offer is visible on the storefront.
type Schedule struct {
	StartsAt *time.Time `json:"startsAt,omitempty" bson:"startsAt,omitempty"`
	EndsAt   *time.Time `json:"endsAt,omitempty" bson:"endsAt,omitempty"`
}

// OfferAnalytics carries eventually-consistent display counters.
type OfferAnalytics struct {
	Views       int64 `json:"views" bson:"views"`
	Conversions int64 `json:"conversions" bson:"conversions"`
}

const base36Chars = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewOfferID generates a unique offer id in the form
// "off_<millisecond timestamp>_<6 char random suffix>".
// Uniqueness is practical, not cryptographic; the id must never be used as
// a security token.
func NewOfferID() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = base36Chars[rand.Intn(len(base36Chars))]
	}
	return fmt.Sprintf("off_%d_%s", time.Now().UnixMilli(), suffix)
}

// FormatDiscountValue renders a discount for display, e.g. "10%" or "$5".
func FormatDiscountValue(d Discount) string {
	value := strconv.FormatFloat(d.Value, 'f', -1, 64)
	if d.Kind == DiscountPercentage {
		return value + "%"
	}
	currency := d.Currency
	if currency == "" {
		currency = "$"
	}
	return currency + value
}

// FormatTargetLabel renders a target for display,
// e.g. "All Products", "2 Products", "1 Collection".
func FormatTargetLabel(t Target) string {
	switch t.TargetType {
	case TargetAll:
		return "All Products"
	case TargetProduct:
		return pluralize(len(t.Products), "Product")
	case TargetCollection:
		return pluralize(len(t.Collections), "Collection")
	default:
		return "Unknown"
	}
}

func pluralize(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, noun)
	}
	return fmt.Sprintf("%d %ss", count, noun)
}

// StatusBadgeTone maps an offer status to the badge tone used by the admin UI.
func StatusBadgeTone(status string) string {
	switch status {
	case OfferStatusActive:
		return "success"
	case OfferStatusExpired:
		return "critical"
	default:
		return "default"
	}
}
