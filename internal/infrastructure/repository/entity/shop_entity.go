package entity

import (
	"time"

	"discount-offers-layer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoShopDoc represents a merchant installation in MongoDB, keyed by the
// storefront domain (a unique index, not the _id).
type MongoShopDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Shop               string             `bson:"shop"`
	AccessToken        string             `bson:"accessToken,omitempty"`
	Scopes             []string           `bson:"scopes"`
	InstalledStatus    string             `bson:"installedStatus"`
	Status             string             `bson:"status"`
	Plan               MongoPlanDoc       `bson:"plan"`
	Settings           MongoSettingsDoc   `bson:"settings"`
	ExtensionActivated bool               `bson:"extension_activated"`
	Offers             []string           `bson:"offers"`
	OfferStats         MongoOfferStatsDoc `bson:"offerStats"`
	ShopUserName       string             `bson:"shopUserName,omitempty"`
	SupportEmail       string             `bson:"supportEmail,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

// MongoPlanDoc holds basic billing info.
type MongoPlanDoc struct {
	Name          string     `bson:"name"`
	BillingStatus string     `bson:"billingStatus"`
	TrialEndsAt   *time.Time `bson:"trialEndsAt,omitempty"`
}

// MongoSettingsDoc holds per-shop defaults.
type MongoSettingsDoc struct {
	DefaultDiscountType  string `bson:"defaultDiscountType"`
	DefaultWidgetEnabled bool   `bson:"defaultWidgetEnabled"`
	Currency             string `bson:"currency"`
}

// MongoOfferStatsDoc holds the denormalized offer counters.
type MongoOfferStatsDoc struct {
	TotalOffers  int `bson:"totalOffers"`
	ActiveOffers int `bson:"activeOffers"`
}

// ToDomain converts the MongoDB document to a domain entity
func (d *MongoShopDoc) ToDomain() *domain.Shop {
	return &domain.Shop{
		Domain:          d.Shop,
		AccessToken:     d.AccessToken,
		Scopes:          d.Scopes,
		InstalledStatus: d.InstalledStatus,
		Status:          d.Status,
		Plan: domain.Plan{
			Name:          d.Plan.Name,
			BillingStatus: d.Plan.BillingStatus,
			TrialEndsAt:   d.Plan.TrialEndsAt,
		},
		Settings: domain.ShopSettings{
			DefaultDiscountType:  d.Settings.DefaultDiscountType,
			DefaultWidgetEnabled: d.Settings.DefaultWidgetEnabled,
			Currency:             d.Settings.Currency,
		},
		ExtensionActivated: d.ExtensionActivated,
		OfferIDs:           d.Offers,
		OfferStats: domain.OfferStats{
			TotalOffers:  d.OfferStats.TotalOffers,
			ActiveOffers: d.OfferStats.ActiveOffers,
		},
		OwnerName:    d.ShopUserName,
		SupportEmail: d.SupportEmail,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// MongoShopDocFromDomain converts a domain entity to a MongoDB document
func MongoShopDocFromDomain(shop *domain.Shop) *MongoShopDoc {
	return &MongoShopDoc{
		Shop:            shop.Domain,
		AccessToken:     shop.AccessToken,
		Scopes:          shop.Scopes,
		InstalledStatus: shop.InstalledStatus,
		Status:          shop.Status,
		Plan: MongoPlanDoc{
			Name:          shop.Plan.Name,
			BillingStatus: shop.Plan.BillingStatus,
			TrialEndsAt:   shop.Plan.TrialEndsAt,
		},
		Settings: MongoSettingsDoc{
			DefaultDiscountType:  shop.Settings.DefaultDiscountType,
			DefaultWidgetEnabled: shop.Settings.DefaultWidgetEnabled,
			Currency:             shop.Settings.Currency,
		},
		ExtensionActivated: shop.ExtensionActivated,
		Offers:             shop.OfferIDs,
		OfferStats: MongoOfferStatsDoc{
			TotalOffers:  shop.OfferStats.TotalOffers,
			ActiveOffers: shop.OfferStats.ActiveOffers,
		},
		ShopUserName: shop.OwnerName,
		SupportEmail: shop.SupportEmail,
		CreatedAt:    shop.CreatedAt,
		UpdatedAt:    shop.UpdatedAt,
	}
}
