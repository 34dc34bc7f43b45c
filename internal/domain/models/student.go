// internal/domain/models/student.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Student is the central record of the application.
//
// NOTE:
//   - IDNumber is the national ID (exactly 9 digits) and is unique across
//     all students; the store enforces uniqueness with an index, handlers
//     enforce the format before persisting.
//   - GradeID and GroupID are optional. When both are set, the group must
//     belong to the grade (validated on create/edit).
//   - ProfileImage is a path reference under the configured upload dir,
//     not an owned file handle.
type Student struct {
	ID           primitive.ObjectID  `bson:"_id" json:"id"`
	FirstName    string              `bson:"first_name" json:"first_name"`
	FirstNameCI  string              `bson:"first_name_ci" json:"first_name_ci"` // lowercase, diacritics-stripped
	LastName     string              `bson:"last_name" json:"last_name"`
	LastNameCI   string              `bson:"last_name_ci" json:"last_name_ci"`
	IDNumber     string              `bson:"id_number" json:"id_number"`
	GradeID      *primitive.ObjectID `bson:"grade_id,omitempty" json:"grade_id,omitempty"`
	GroupID      *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	ProfileImage string              `bson:"profile_image,omitempty" json:"profile_image,omitempty"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Address      string              `bson:"address,omitempty" json:"address,omitempty"`
	BirthDate    *time.Time          `bson:"birth_date,omitempty" json:"birth_date,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName returns the student's display form ("First Last"). Audit rows for
// created/deleted students record this string.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
