// internal/app/store/grades/gradestore.go
package gradestore

import (
	"context"
	"errors"
	"time"

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

var ErrDuplicateGradeName = errors.New("a grade with this name already exists")

// Aliases maps alternate grade-level names to the canonical stored name.
// The landing page and grade URLs accept either form.
var Aliases = map[string]string{
	"7th": "ז",
	"8th": "ח",
	"9th": "ט",
}

// Canonical resolves a grade name or alias to the stored name.
func Canonical(name string) string {
	if c, ok := Aliases[name]; ok {
		return c
	}
	return name
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("grades")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Grade, error) {
	var g models.Grade
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return models.Grade{}, err
	}
	return g, nil
}

// GetByName looks up a grade by its canonical name. Aliases are resolved
// before the query.
func (s *Store) GetByName(ctx context.Context, name string) (models.Grade, error) {
	var g models.Grade
	if err := s.c.FindOne(ctx, bson.M{"name": Canonical(name)}).Decode(&g); err != nil {
		return models.Grade{}, err
	}
	return g, nil
}

func (s *Store) Create(ctx context.Context, g models.Grade) (models.Grade, error) {
	g.ID = primitive.NewObjectID()
	g.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Grade{}, ErrDuplicateGradeName
		}
		return models.Grade{}, err
	}
	return g, nil
}

// EnsureByName returns the grade with the given name, creating it when
// absent. Startup uses this to seed the fixed grade levels.
func (s *Store) EnsureByName(ctx context.Context, name string) (models.Grade, error) {
	g, err := s.GetByName(ctx, name)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Grade{}, err
	}
	created, err := s.Create(ctx, models.Grade{Name: Canonical(name)})
	if errors.Is(err, ErrDuplicateGradeName) {
		// Lost a race with another creator; fetch the winner.
		return s.GetByName(ctx, name)
	}
	return created, err
}

// List returns all grades sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Grade, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var grades []models.Grade
	if err := cursor.All(ctx, &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

// Delete removes a grade by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
