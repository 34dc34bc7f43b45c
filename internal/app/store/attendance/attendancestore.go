// internal/app/store/attendance/attendancestore.go
package attendancestore

import (
	"context"
	"errors"
	"time"

	"github.com/arikst/schoolhub/internal/app/system/inputval"
	"github.com/arikst/schoolhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateDay    = errors.New("an attendance record for this student and day already exists")
	ErrInvalidStatus   = errors.New("attendance status must be present, absent, or late")
	ErrStudentRequired = errors.New("attendance requires a student")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("attendance")}
}

// Record inserts one attendance record. The date is truncated to UTC
// midnight; one record per student per calendar day.
func (s *Store) Record(ctx context.Context, a models.Attendance) (models.Attendance, error) {
	if a.StudentID.IsZero() {
		return models.Attendance{}, ErrStudentRequired
	}
	if !models.ValidAttendanceStatus(a.Status) {
		return models.Attendance{}, ErrInvalidStatus
	}
	a.ID = primitive.NewObjectID()
	a.Date = inputval.DayUTC(a.Date)
	a.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Attendance{}, ErrDuplicateDay
		}
		return models.Attendance{}, err
	}
	return a, nil
}

// SetStatus upserts the record for (student, day): records a new status or
// overwrites the existing one.
func (s *Store) SetStatus(ctx context.Context, studentID primitive.ObjectID, date time.Time, status, notes string) error {
	if !models.ValidAttendanceStatus(status) {
		return ErrInvalidStatus
	}
	day := inputval.DayUTC(date)
	_, err := s.c.UpdateOne(ctx,
		bson.M{"student_id": studentID, "date": day},
		bson.M{
			"$set":         bson.M{"status": status, "notes": notes},
			"$setOnInsert": bson.M{"_id": primitive.NewObjectID(), "created_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// ListByStudent returns a student's attendance records, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Attendance
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByStudent removes all attendance records of a student (delete cascade).
func (s *Store) DeleteByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"student_id": studentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByStudents removes all attendance records of the given students.
func (s *Store) DeleteByStudents(ctx context.Context, studentIDs []primitive.ObjectID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"student_id": bson.M{"$in": studentIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
