// internal/app/store/assessments/assessmentstore.go
package assessmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/arikst/schoolhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrInvalidMetric = errors.New("assessment metric must be between 1 and 5")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assessments")}
}

func (s *Store) Create(ctx context.Context, a models.Assessment) (models.Assessment, error) {
	if !models.ValidMetric(a.Metric) {
		return models.Assessment{}, ErrInvalidMetric
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	if a.Date.IsZero() {
		a.Date = a.CreatedAt
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Assessment{}, err
	}
	return a, nil
}

// ListByStudent returns a student's assessments, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Assessment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.c.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Assessment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByStudent removes all assessments of a student (delete cascade).
func (s *Store) DeleteByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"student_id": studentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByStudents removes all assessments of the given students.
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
