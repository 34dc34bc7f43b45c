package assessmentstore_test

import (
	"testing"
	"time"

	assessmentstore "github.com/arikst/schoolhub/internal/app/store/assessments"
	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/arikst/schoolhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_InvalidMetric(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assessmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, metric := range []int{0, 6, -1} {
		_, err := store.Create(ctx, models.Assessment{
			StudentID: primitive.NewObjectID(),
			Metric:    metric,
			Value:     3,
		})
		if err != assessmentstore.ErrInvalidMetric {
			t.Errorf("metric %d: expected ErrInvalidMetric, got %v", metric, err)
		}
	}
}

func TestStore_ListByStudent_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assessmentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	old := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	fixtures.CreateAssessment(ctx, studentID, 1, 2, old)
	fixtures.CreateAssessment(ctx, studentID, 2, 5, recent)
	fixtures.CreateAssessment(ctx, primitive.NewObjectID(), 1, 4, recent)

	list, err := store.ListByStudent(ctx, studentID)
	if err != nil {
		t.Fatalf("ListByStudent failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(list))
	}
	if !list[0].Date.After(list[1].Date) {
		t.Errorf("expected newest first, got %v then %v", list[0].Date, list[1].Date)
	}
}
