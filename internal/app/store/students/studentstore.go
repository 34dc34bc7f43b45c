// internal/app/store/students/studentstore.go
package studentstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/arikst/schoolhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateIDNumber = errors.New("a student with this ID number already exists")

// Sort orders for rosters and search results.
const (
	SortFirstName = "first_name"
	SortLastName  = "last_name"
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("students")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Student, error) {
	var st models.Student
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&st); err != nil {
		return models.Student{}, err
	}
	return st, nil
}

func (s *Store) Create(ctx context.Context, st models.Student) (models.Student, error) {
	now := time.Now().UTC()
	st.ID = primitive.NewObjectID()
	st.FirstNameCI = text.Fold(st.FirstName)
	st.LastNameCI = text.Fold(st.LastName)
	st.CreatedAt = now
	st.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, st)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Student{}, ErrDuplicateIDNumber
		}
		return models.Student{}, err
	}
	return st, nil
}

// Update replaces the editable fields of a student and refreshes updated_at.
// The caller diffs tracked fields for the audit trail before calling.
func (s *Store) Update(ctx context.Context, st models.Student) error {
	set := bson.M{
		"first_name":    st.FirstName,
		"first_name_ci": text.Fold(st.FirstName),
		"last_name":     st.LastName,
		"last_name_ci":  text.Fold(st.LastName),
		"id_number":     st.IDNumber,
		"grade_id":      st.GradeID,
		"group_id":      st.GroupID,
		"phone":         st.Phone,
		"address":       st.Address,
		"birth_date":    st.BirthDate,
		"notes":         st.Notes,
		"updated_at":    time.Now().UTC(),
	}
	if st.ProfileImage != "" {
		set["profile_image"] = st.ProfileImage
	}
	_, err := s.c.UpdateByID(ctx, st.ID, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateIDNumber
		}
		return err
	}
	return nil
}

// searchFilter builds a case-insensitive substring match over first name,
// last name, and ID number. An empty term matches everything.
func searchFilter(term string) bson.M {
	if term == "" {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(term)), Options: ""}
	return bson.M{"$or": bson.A{
		bson.M{"first_name_ci": re},
		bson.M{"last_name_ci": re},
		bson.M{"id_number": primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: ""}},
	}}
}

func sortSpec(sortBy string) bson.D {
	if sortBy == SortFirstName {
		return bson.D{{Key: "first_name_ci", Value: 1}, {Key: "last_name_ci", Value: 1}}
	}
	return bson.D{{Key: "last_name_ci", Value: 1}, {Key: "first_name_ci", Value: 1}}
}

// ListByGroup returns the roster of a group, optionally filtered by a search
// term and ordered by the requested sort (last name by default).
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID, term, sortBy string) ([]models.Student, error) {
	filter := searchFilter(term)
	filter["group_id"] = groupID
	return s.find(ctx, filter, sortBy)
}

// Search returns students matching the term across the whole school.
// gradeIDs and groupIDs extend the match to students assigned to those
// grades or groups (used when the term also matched a grade or group name).
func (s *Store) Search(ctx context.Context, term, sortBy string, gradeIDs, groupIDs []primitive.ObjectID) ([]models.Student, error) {
	filter := searchFilter(term)
	if term != "" && (len(gradeIDs) > 0 || len(groupIDs) > 0) {
		or := filter["$or"].(bson.A)
		if len(gradeIDs) > 0 {
			or = append(or, bson.M{"grade_id": bson.M{"$in": gradeIDs}})
		}
		if len(groupIDs) > 0 {
			or = append(or, bson.M{"group_id": bson.M{"$in": groupIDs}})
		}
		filter["$or"] = or
	}
	return s.find(ctx, filter, sortBy)
}

func (s *Store) find(ctx context.Context, filter bson.M, sortBy string) ([]models.Student, error) {
	opts := options.Find().SetSort(sortSpec(sortBy))
	cursor, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var students []models.Student
	if err := cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Delete removes a student by ID. Returns the number of documents deleted (0 or 1).
// Assessments and attendance are cascaded by the caller.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IDsByGrade returns the ids of every student in a grade. The grade
// cascade collects these before removing the students so their
// assessments and attendance can go too.
func (s *Store) IDsByGrade(ctx context.Context, gradeID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.c.Find(ctx, bson.M{"grade_id": gradeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// DeleteByGrade removes all students of a grade (grade cascade).
func (s *Store) DeleteByGrade(ctx context.Context, gradeID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"grade_id": gradeID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ClearGroup unsets group_id on every student of the group. Group deletion
// detaches students rather than removing them.
func (s *Store) ClearGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"group_id": groupID},
		bson.M{"$unset": bson.M{"group_id": ""}, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountByGrade returns the number of students in a grade.
func (s *Store) CountByGrade(ctx context.Context, gradeID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"grade_id": gradeID})
}

// CountByGroup returns the number of students in a group.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_id": groupID})
}

// Count returns the total number of students.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
