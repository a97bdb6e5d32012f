package repository

import (
	"context"
	"time"

	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/infrastructure/repository/entity"
	"discount-offers-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoShopRepository implements ShopRepository using MongoDB
type MongoShopRepository struct {
	collection *mongo.Collection
}

// NewMongoShopRepository creates a new MongoDB shop repository
func NewMongoShopRepository(db *mongo.Database) ports.ShopRepository {
	collection := db.Collection("shops")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "shop", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = collection.Indexes().CreateOne(context.Background(), indexModel)

	return &MongoShopRepository{collection: collection}
}

// UpsertFromInstallation creates or refreshes the shop record after OAuth.
// Offer references and stats are seeded with $setOnInsert so a re-install
// never wipes them.
func (r *MongoShopRepository) UpsertFromInstallation(ctx context.Context, shopDomain, accessToken string, scopes []string, info *domain.ShopInfo) (*domain.Shop, error) {
	now := time.Now()

	set := bson.M{
		"accessToken":     accessToken,
		"scopes":          scopes,
		"installedStatus": domain.InstalledStatusInstalled,
		"status":          domain.ShopStatusActive,
		"updatedAt":       now,
	}

	if info != nil {
		if info.Name != "" {
			set["shopUserName"] = info.Name
		}
		if email := info.SupportEmailOrFallback(); email != "" {
			set["supportEmail"] = email
		}
		if info.CurrencyCode != "" {
			set["settings.currency"] = info.CurrencyCode
		}
	}

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"offers": []string{},
			"offerStats": bson.M{
				"totalOffers":  0,
				"activeOffers": 0,
			},
			"plan": bson.M{
				"name":          "free",
				"billingStatus": "not_billed",
			},
			"settings.defaultDiscountType":  domain.DiscountPercentage,
			"settings.defaultWidgetEnabled": true,
			"extension_activated":           false,
			"createdAt":                     now,
		},
	}

	// A new install without shop info still needs a currency default.
	if _, ok := set["settings.currency"]; !ok {
		update["$setOnInsert"].(bson.M)["settings.currency"] = "USD"
	}

	filter := bson.M{"shop": shopDomain}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc entity.MongoShopDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, &domain.PersistenceError{Op: "failed to upsert shop", Err: err}
	}

	return doc.ToDomain(), nil
}

// GetByDomain retrieves a shop by domain
func (r *MongoShopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var doc entity.MongoShopDoc
	filter := bson.M{"shop": shopDomain}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "failed to get shop", Err: err}
	}

	return doc.ToDomain(), nil
}

// GetOwnerName retrieves the stored owner name for the dashboard greeting
func (r *MongoShopRepository) GetOwnerName(ctx context.Context, shopDomain string) (string, error) {
	var doc struct {
		ShopUserName string `bson:"shopUserName"`
	}
	filter := bson.M{"shop": shopDomain}
	opts := options.FindOne().SetProjection(bson.M{"shopUserName": 1})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", &domain.PersistenceError{Op: "failed to get shop owner name", Err: err}
	}

	return doc.ShopUserName, nil
}

// MarkUninstalled flips the shop to uninstalled/paused, keeping the record
func (r *MongoShopRepository) MarkUninstalled(ctx context.Context, shopDomain string) error {
	filter := bson.M{"shop": shopDomain}
	update := bson.M{"$set": bson.M{
		"installedStatus": domain.InstalledStatusUninstalled,
		"status":          domain.ShopStatusPaused,
		"updatedAt":       time.Now(),
	}}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return &domain.PersistenceError{Op: "failed to mark shop uninstalled", Err: err}
	}

	return nil
}

// UpdateScopes replaces the granted scope set
func (r *MongoShopRepository) UpdateScopes(ctx context.Context, shopDomain string, scopes []string) error {
	filter := bson.M{"shop": shopDomain}
	update := bson.M{"$set": bson.M{
		"scopes":    scopes,
		"updatedAt": time.Now(),
	}}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return &domain.PersistenceError{Op: "failed to update shop scopes", Err: err}
	}

	return nil
}

// AddOfferReference adds the offer id to the shop's offer set and bumps the
// counters. $addToSet keeps the set free of duplicates, but $inc applies
// unconditionally; callers own the call-exactly-once contract.
func (r *MongoShopRepository) AddOfferReference(ctx context.Context, shopDomain, offerID, initialStatus string) error {
	inc := bson.M{"offerStats.totalOffers": 1}
	if initialStatus == domain.OfferStatusActive {
		inc["offerStats.activeOffers"] = 1
	}

	filter := bson.M{"shop": shopDomain}
	update := bson.M{
		"$addToSet": bson.M{"offers": offerID},
		"$inc":      inc,
		"$set":      bson.M{"updatedAt": time.Now()},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return &domain.PersistenceError{Op: "failed to add offer reference", Err: err}
	}

	return nil
}
