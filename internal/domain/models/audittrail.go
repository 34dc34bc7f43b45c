// internal/domain/models/audittrail.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditEntry is one immutable field-level change record.
//
// Entity and EntityID form a loosely-typed reference on purpose: audit rows
// must survive after the entity they describe is deleted, so EntityID is the
// hex string of the entity's ObjectID rather than an enforced reference.
// Rows are written once and never updated or deleted in normal operation.
type AuditEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Entity    string             `bson:"entity" json:"entity"`
	EntityID  string             `bson:"entity_id" json:"entity_id"`
	Field     string             `bson:"field" json:"field"`
	OldValue  string             `bson:"old_value" json:"old_value"`
	NewValue  string             `bson:"new_value" json:"new_value"`
	User      string             `bson:"user" json:"user"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
