// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateGrade creates a test grade level with the given name (e.g. "ז").
func (f *Fixtures) CreateGrade(ctx context.Context, name string) models.Grade {
	f.t.Helper()

	grade := models.Grade{
		ID:        primitive.NewObjectID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("grades").InsertOne(ctx, grade); err != nil {
		f.t.Fatalf("failed to create test grade: %v", err)
	}
	return grade
}

// CreateGroup creates a test group in the given grade.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, gradeID primitive.ObjectID) models.Group {
	f.t.Helper()

	group := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		GradeID:   gradeID,
		Teacher:   "Test Teacher",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// CreateStudent creates a test student assigned to the given grade and group.
func (f *Fixtures) CreateStudent(ctx context.Context, first, last, idNumber string, gradeID, groupID primitive.ObjectID) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	student := models.Student{
		ID:          primitive.NewObjectID(),
		FirstName:   first,
		FirstNameCI: text.Fold(first),
		LastName:    last,
		LastNameCI:  text.Fold(last),
		IDNumber:    idNumber,
		GradeID:     &gradeID,
		GroupID:     &groupID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("students").InsertOne(ctx, student); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

// CreateUnassignedStudent creates a student with no grade or group.
func (f *Fixtures) CreateUnassignedStudent(ctx context.Context, first, last, idNumber string) models.Student {
	f.t.Helper()

	now := time.Now().UTC()
	student := models.Student{
		ID:          primitive.NewObjectID(),
		FirstName:   first,
		FirstNameCI: text.Fold(first),
		LastName:    last,
		LastNameCI:  text.Fold(last),
		IDNumber:    idNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("students").InsertOne(ctx, student); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return student
}

// CreateAssessment creates a test assessment for the given student.
func (f *Fixtures) CreateAssessment(ctx context.Context, studentID primitive.ObjectID, metric int, value float64, date time.Time) models.Assessment {
	f.t.Helper()

	assessment := models.Assessment{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		Metric:    metric,
		Value:     value,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("assessments").InsertOne(ctx, assessment); err != nil {
		f.t.Fatalf("failed to create test assessment: %v", err)
	}
	return assessment
}

// CreateAttendance creates a test attendance record for the given student
// and day. The date is stored at UTC midnight, matching the store.
func (f *Fixtures) CreateAttendance(ctx context.Context, studentID primitive.ObjectID, date time.Time, status string) models.Attendance {
	f.t.Helper()

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	att := models.Attendance{
		ID:        primitive.NewObjectID(),
		StudentID: studentID,
		Date:      day,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("attendance").InsertOne(ctx, att); err != nil {
		f.t.Fatalf("failed to create test attendance: %v", err)
	}
	return att
}

// CreateAuditEntry inserts a raw audit row, for query tests.
func (f *Fixtures) CreateAuditEntry(ctx context.Context, entity, entityID, field, oldVal, newVal, user string) models.AuditEntry {
	f.t.Helper()

	entry := models.AuditEntry{
		ID:        primitive.NewObjectID(),
		Entity:    entity,
		EntityID:  entityID,
		Field:     field,
		OldValue:  oldVal,
		NewValue:  newVal,
		User:      user,
		Timestamp: time.Now().UTC(),
	}
	if _, err := f.db.Collection("audit_trail").InsertOne(ctx, entry); err != nil {
		f.t.Fatalf("failed to create test audit entry: %v", err)
	}
	return entry
}

// CreateUser creates a test account with the given role and a fixed
// password hash (not usable for login).
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     name,
		FullNameCI:   text.Fold(name),
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
