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

// SessionRepository stores OAuth sessions in MongoDB, keyed by the CSRF
// state value. A TTL index expires abandoned sessions server-side.
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new MongoDB session repository
func NewSessionRepository(db *mongo.Database) ports.SessionRepository {
	collection := db.Collection("oauth_sessions")

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, _ = collection.Indexes().CreateOne(context.Background(), indexModel)

	return &SessionRepository{collection: collection}
}

// CreateSession stores a new OAuth session
func (r *SessionRepository) CreateSession(ctx context.Context, session *domain.Session) error {
	session.ID = session.State
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return &domain.PersistenceError{Op: "failed to create session", Err: err}
	}

	return nil
}

// GetSession retrieves a session by state; (nil, nil) when absent or expired
func (r *SessionRepository) GetSession(ctx context.Context, state string) (*domain.Session, error) {
	var session domain.Session
	filter := bson.M{"state": state}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "failed to get session", Err: err}
	}

	// The TTL monitor only runs periodically, so check expiry here too.
	if session.Expired(time.Now()) {
		return nil, nil
	}

	return &session, nil
}

// DeleteSession removes a session once consumed
func (r *SessionRepository) DeleteSession(ctx context.Context, state string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"state": state}); err != nil {
		return &domain.PersistenceError{Op: "failed to delete session", Err: err}
	}
	return nil
}
