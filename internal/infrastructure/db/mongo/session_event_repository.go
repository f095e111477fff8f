package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

const sessionEventsCollection = "session_events"

// SessionEventRepository implements ports.SessionEventRepository using MongoDB.
type SessionEventRepository struct {
	coll *mongo.Collection
}

// NewSessionEventRepository creates a new SessionEventRepository.
func NewSessionEventRepository(db *mongo.Database) *SessionEventRepository {
	return &SessionEventRepository{coll: db.Collection(sessionEventsCollection)}
}

var _ ports.SessionEventRepository = (*SessionEventRepository)(nil)

// EnsureIndexes creates the lookup indexes used when reviewing a session or
// a user's history.
func (r *SessionEventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}, options.CreateIndexes())
	if err != nil {
		return fmt.Errorf("create session event indexes: %w", err)
	}
	return nil
}

// InsertEvent appends one lifecycle event to the audit trail.
func (r *SessionEventRepository) InsertEvent(ctx context.Context, e *domain.SessionEvent) error {
	if _, err := r.coll.InsertOne(ctx, eventDocument(e, time.Now())); err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}
	return nil
}

// eventDocument omits empty optional fields so failed logins carry no
// session or user keys.
func eventDocument(e *domain.SessionEvent, recordedAt time.Time) bson.M {
	doc := bson.M{
		"type":        string(e.Type),
		"timestamp":   e.Timestamp.UTC(),
		"recorded_at": recordedAt.UTC(),
	}
	if e.SessionID != "" {
		doc["session_id"] = e.SessionID
	}
	if e.UserID != "" {
		doc["user_id"] = e.UserID
	}
	if e.Role != "" {
		doc["role"] = string(e.Role)
	}
	if e.Reason != "" {
		doc["reason"] = e.Reason
	}
	return doc
}
