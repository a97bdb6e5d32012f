package entity

import (
	"time"

	"discount-offers-layer/internal/domain"
)

// MongoOfferDoc represents an offer in MongoDB. The _id is the generated
// string offer id, not an ObjectID, to stay compatible with documents
// written by earlier versions of the app.
type MongoOfferDoc struct {
	ID        string               `bson:"_id"`
	Shop      string               `bson:"shop"`
	Title     string               `bson:"title"`
	Status    string               `bson:"status"`
	Target    MongoTargetDoc       `bson:"target"`
	Discount  MongoDiscountDoc     `bson:"discount"`
	Shopify   MongoIntegrationDoc  `bson:"shopify"`
	Widget    *MongoWidgetDoc      `bson:"widget,omitempty"`
	Schedule  *MongoScheduleDoc    `bson:"schedule,omitempty"`
	Analytics *MongoAnalyticsDoc   `bson:"analytics,omitempty"`
	CreatedAt time.Time            `bson:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt"`
}

// MongoTargetDoc represents the offer target union.
type MongoTargetDoc struct {
	TargetType  string               `bson:"targetType"`
	Products    []MongoProductDoc    `bson:"products"`
	Collections []MongoCollectionDoc `bson:"collections"`
}

// MongoProductDoc is a denormalized product snapshot.
type MongoProductDoc struct {
	ProductID string `bson:"productId"`
	Title     string `bson:"title"`
	Handle    string `bson:"handle"`
	Image     string `bson:"image"`
	VariantID string `bson:"variantId"`
}

// MongoCollectionDoc is a denormalized collection snapshot.
type MongoCollectionDoc struct {
	CollectionID string `bson:"collectionId"`
	Title        string `bson:"title"`
	Handle       string `bson:"handle"`
}

// MongoDiscountDoc represents the discount. The field is named "type" in
// stored documents; the domain calls it Kind.
type MongoDiscountDoc struct {
	Type     string  `bson:"type"`
	Value    float64 `bson:"value"`
	Currency string  `bson:"currency,omitempty"`
}

// MongoIntegrationDoc tracks metafield sync state.
type MongoIntegrationDoc struct {
	MetafieldNamespace string `bson:"metafieldNamespace"`
	MetafieldKey       string `bson:"metafieldKey"`
	MetafieldsApplied  bool   `bson:"metafieldsApplied"`
}

// MongoWidgetDoc holds optional widget settings.
type MongoWidgetDoc struct {
	Enabled  bool   `bson:"enabled"`
	Position string `bson:"position,omitempty"`
	Label    string `bson:"label,omitempty"`
}

// MongoScheduleDoc holds optional schedule bounds.
type MongoScheduleDoc struct {
	StartsAt *time.Time `bson:"startsAt,omitempty"`
	EndsAt   *time.Time `bson:"endsAt,omitempty"`
}

// MongoAnalyticsDoc holds optional display counters.
type MongoAnalyticsDoc struct {
	Views       int64 `bson:"views"`
	Conversions int64 `bson:"conversions"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoOfferDoc) ToDomain() *domain.Offer {
	offer := &domain.Offer{
		ID:         d.ID,
		ShopDomain: d.Shop,
		Title:      d.Title,
		Status:     d.Status,
		Target: domain.Target{
			TargetType: d.Target.TargetType,
		},
		Discount: domain.Discount{
			Kind:     d.Discount.Type,
			Value:    d.Discount.Value,
			Currency: d.Discount.Currency,
		},
		Shopify: domain.ShopifyIntegration{
			MetafieldNamespace: d.Shopify.MetafieldNamespace,
			MetafieldKey:       d.Shopify.MetafieldKey,
			MetafieldsApplied:  d.Shopify.MetafieldsApplied,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}

	for _, p := range d.Target.Products {
		offer.Target.Products = append(offer.Target.Products, domain.ProductTarget{
			ProductID: p.ProductID,
			Title:     p.Title,
			Handle:    p.Handle,
			Image:     p.Image,
			VariantID: p.VariantID,
		})
	}
	for _, c := range d.Target.Collections {
		offer.Target.Collections = append(offer.Target.Collections, domain.CollectionTarget{
			CollectionID: c.CollectionID,
			Title:        c.Title,
			Handle:       c.Handle,
		})
	}

	if d.Widget != nil {
		offer.Widget = &domain.WidgetSettings{
			Enabled:  d.Widget.Enabled,
			Position: d.Widget.Position,
			Label:    d.Widget.Label,
		}
	}
	if d.Schedule != nil {
		offer.Schedule = &domain.Schedule{
			StartsAt: d.Schedule.StartsAt,
			EndsAt:   d.Schedule.EndsAt,
		}
	}
	if d.Analytics != nil {
		offer.Analytics = &domain.OfferAnalytics{
			Views:       d.Analytics.Views,
			Conversions: d.Analytics.Conversions,
		}
	}

	return offer
}

// MongoOfferDocFromDomain converts a domain entity to a MongoDB document
func MongoOfferDocFromDomain(offer *domain.Offer) *MongoOfferDoc {
	doc := &MongoOfferDoc{
		ID:     offer.ID,
		Shop:   offer.ShopDomain,
		Title:  offer.Title,
		Status: offer.Status,
		Target: MongoTargetDoc{
			TargetType:  offer.Target.TargetType,
			Products:    []MongoProductDoc{},
			Collections: []MongoCollectionDoc{},
		},
		Discount: MongoDiscountDoc{
			Type:     offer.Discount.Kind,
			Value:    offer.Discount.Value,
			Currency: offer.Discount.Currency,
		},
		Shopify: MongoIntegrationDoc{
			MetafieldNamespace: offer.Shopify.MetafieldNamespace,
			MetafieldKey:       offer.Shopify.MetafieldKey,
			MetafieldsApplied:  offer.Shopify.MetafieldsApplied,
		},
		CreatedAt: offer.CreatedAt,
		UpdatedAt: offer.UpdatedAt,
	}

	for _, p := range offer.Target.Products {
		doc.Target.Products = append(doc.Target.Products, MongoProductDoc{
			ProductID: p.ProductID,
			Title:     p.Title,
			Handle:    p.Handle,
			Image:     p.Image,
			VariantID: p.VariantID,
		})
	}
	for _, c := range offer.Target.Collections {
		doc.Target.Collections = append(doc.Target.Collections, MongoCollectionDoc{
			CollectionID: c.CollectionID,
			Title:        c.Title,
			Handle:       c.Handle,
		})
	}

	if offer.Widget != nil {
		doc.Widget = &MongoWidgetDoc{
			Enabled:  offer.Widget.Enabled,
			Position: offer.Widget.Position,
			Label:    offer.Widget.Label,
		}
	}
	if offer.Schedule != nil {
		doc.Schedule = &MongoScheduleDoc{
			StartsAt: offer.Schedule.StartsAt,
			EndsAt:   offer.Schedule.EndsAt,
		}
	}
	if offer.Analytics != nil {
		doc.Analytics = &MongoAnalyticsDoc{
			Views:       offer.Analytics.Views,
			Conversions: offer.Analytics.Conversions,
		}
	}

	return doc
}
