package repository

import (
	"context"
	"time"

	"discount-offers-layer/internal/domain"
	"discount-offers-layer/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const webhookEventRetention = 30 * 24 * time.Hour

// MongoWebhookEventRepository logs verified webhook deliveries. A TTL index
// keeps the collection bounded.
type MongoWebhookEventRepository struct {
	collection *mongo.Collection
}

// NewMongoWebhookEventRepository creates a new MongoDB webhook event repository
func NewMongoWebhookEventRepository(db *mongo.Database) ports.WebhookEventRepository {
	collection := db.Collection("webhook_events")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "receivedAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(webhookEventRetention.Seconds())),
		},
		{Keys: bson.D{{Key: "shop", Value: 1}, {Key: "topic", Value: 1}}},
	}
	_, _ = collection.Indexes().CreateMany(context.Background(), indexes)

	return &MongoWebhookEventRepository{collection: collection}
}

// Record persists a webhook delivery
func (r *MongoWebhookEventRepository) Record(ctx context.Context, event *domain.WebhookEvent) error {
	doc := bson.M{
		"_id":        event.ID,
		"topic":      event.Topic,
		"shop":       event.Shop,
		"payload":    string(event.Payload),
		"verified":   event.Verified,
		"receivedAt": event.ReceivedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return &domain.PersistenceError{Op: "failed to record webhook event", Err: err}
	}

	return nil
}
