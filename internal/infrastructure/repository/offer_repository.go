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

// MongoOfferRepository implements OfferRepository using MongoDB
type MongoOfferRepository struct {
	collection *mongo.Collection
}

// NewMongoOfferRepository creates a new MongoDB offer repository
func NewMongoOfferRepository(db *mongo.Database) ports.OfferRepository {
	collection := db.Collection("offers")

	// Compound index backing every (shop, _id) lookup plus the dashboard
	// status filter. Index creation is best-effort on startup.
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shop", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(context.Background(), indexes)

	return &MongoOfferRepository{collection: collection}
}

// Create persists a new offer
func (r *MongoOfferRepository) Create(ctx context.Context, offer *domain.Offer) (*domain.Offer, error) {
	if err := validateRequiredOfferFields(offer); err != nil {
		return nil, err
	}

	doc := entity.MongoOfferDocFromDomain(offer)
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = domain.OfferStatusActive
	}
	if doc.Shopify.MetafieldNamespace == "" {
		doc.Shopify.MetafieldNamespace = domain.DefaultMetafieldNamespace
	}
	if doc.Shopify.MetafieldKey == "" {
		doc.Shopify.MetafieldKey = domain.DefaultMetafieldKey
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, &domain.PersistenceError{Op: "failed to create offer", Err: err}
	}

	return doc.ToDomain(), nil
}

// ListByShop retrieves all offers for a shop
func (r *MongoOfferRepository) ListByShop(ctx context.Context, shopDomain string) ([]*domain.Offer, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"shop": shopDomain})
	if err != nil {
		return nil, &domain.PersistenceError{Op: "failed to list offers", Err: err}
	}
	defer cursor.Close(ctx)

	offers := []*domain.Offer{}
	for cursor.Next(ctx) {
		var doc entity.MongoOfferDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, &domain.PersistenceError{Op: "failed to decode offer", Err: err}
		}
		offers = append(offers, doc.ToDomain())
	}

	if err := cursor.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "cursor error", Err: err}
	}

	return offers, nil
}

// GetByID retrieves an offer by shop domain and id
func (r *MongoOfferRepository) GetByID(ctx context.Context, shopDomain, id string) (*domain.Offer, error) {
	var doc entity.MongoOfferDoc
	filter := bson.M{"shop": shopDomain, "_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "failed to get offer", Err: err}
	}

	return doc.ToDomain(), nil
}

// Update applies a flat $set and returns the post-update document
func (r *MongoOfferRepository) Update(ctx context.Context, shopDomain, id string, fields map[string]interface{}) (*domain.Offer, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	// shop and _id are immutable
	delete(set, "shop")
	delete(set, "_id")
	set["updatedAt"] = time.Now()

	filter := bson.M{"shop": shopDomain, "_id": id}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc entity.MongoOfferDoc
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "failed to update offer", Err: err}
	}

	return doc.ToDomain(), nil
}

// Delete removes an offer; returns false when nothing matched
func (r *MongoOfferRepository) Delete(ctx context.Context, shopDomain, id string) (bool, error) {
	filter := bson.M{"shop": shopDomain, "_id": id}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, &domain.PersistenceError{Op: "failed to delete offer", Err: err}
	}

	return result.DeletedCount > 0, nil
}

func validateRequiredOfferFields(offer *domain.Offer) error {
	fields := map[string]string{}
	if offer.ShopDomain == "" {
		fields["shop"] = "shop domain is required"
	}
	if offer.Title == "" {
		fields["title"] = "title is required"
	}
	if offer.Target.TargetType == "" {
		fields["target.targetType"] = "target type is required"
	}
	if offer.Discount.Kind == "" {
		fields["discount.type"] = "discount type is required"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
