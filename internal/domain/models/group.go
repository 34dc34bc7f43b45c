// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group represents a teaching subdivision inside a Grade, assigned a teacher.
// Group names are unique within their grade (enforced by a compound index on
// grade_id + name_ci).
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	GradeID     primitive.ObjectID `bson:"grade_id" json:"grade_id"`
	Teacher     string             `bson:"teacher" json:"teacher"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
