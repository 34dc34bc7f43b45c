// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/arikst/schoolhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Entity type names recorded in audit rows. Stored as plain strings so the
// rows keep meaning after the referenced record is gone.
const (
	EntityStudent = "Student"
	EntityGroup   = "Group"
	EntityGrade   = "Grade"
)

// Pseudo-field names for lifecycle rows.
const (
	FieldCreated = "created"
	FieldDeleted = "deleted"
)

// QueryFilter defines filters for querying audit rows.
type QueryFilter struct {
	Entity   string
	EntityID string
	Field    string
	Limit    int64
	Offset   int64
}

// Store manages the append-only audit_trail collection. There is
// deliberately no update or delete operation.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_trail")}
}

// Log appends one audit row.
func (s *Store) Log(ctx context.Context, entry models.AuditEntry) (models.AuditEntry, error) {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, entry)
	if err != nil {
		return models.AuditEntry{}, err
	}
	return entry, nil
}

// Query retrieves audit rows matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]models.AuditEntry, error) {
	query := bson.M{}
	if filter.Entity != "" {
		query["entity"] = filter.Entity
	}
	if filter.EntityID != "" {
		query["entity_id"] = filter.EntityID
	}
	if filter.Field != "" {
		query["field"] = filter.Field
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ForEntity retrieves the audit rows for one (entity, id) pair, newest first.
// The student profile page reads its history through this.
func (s *Store) ForEntity(ctx context.Context, entity, entityID string, limit int64) ([]models.AuditEntry, error) {
	return s.Query(ctx, QueryFilter{Entity: entity, EntityID: entityID, Limit: limit})
}
