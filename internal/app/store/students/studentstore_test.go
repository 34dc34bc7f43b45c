package studentstore_test

import (
	"testing"

	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/arikst/schoolhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Student{
		FirstName: "Dana",
		LastName:  "Levi",
		IDNumber:  "123456789",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FirstNameCI == "" || created.LastNameCI == "" {
		t.Error("expected folded name fields to be set")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateIDNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Student{FirstName: "Dana", LastName: "Levi", IDNumber: "123456789"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Student{FirstName: "Noa", LastName: "Cohen", IDNumber: "123456789"})
	if err != studentstore.ErrDuplicateIDNumber {
		t.Errorf("expected ErrDuplicateIDNumber, got %v", err)
	}
}

func TestStore_Update_RefreshesUpdatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Student{FirstName: "Dana", LastName: "Levi", IDNumber: "123456789"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	created.FirstName = "Dina"
	if err := store.Update(ctx, created); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FirstName != "Dina" {
		t.Errorf("FirstName: got %q, want %q", got.FirstName, "Dina")
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("expected UpdatedAt to advance: %v -> %v", created.UpdatedAt, got.UpdatedAt)
	}
}

func TestStore_ListByGroup_SearchAndSort(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	other := fixtures.CreateGroup(ctx, "ז-2", grade.ID)

	fixtures.CreateStudent(ctx, "Dana", "Levi", "111111111", grade.ID, group.ID)
	fixtures.CreateStudent(ctx, "Avi", "Mizrahi", "222222222", grade.ID, group.ID)
	fixtures.CreateStudent(ctx, "Noa", "Cohen", "333333333", grade.ID, group.ID)
	fixtures.CreateStudent(ctx, "Dana", "Stranger", "444444444", grade.ID, other.ID)

	// Default sort: last name, then first name.
	roster, err := store.ListByGroup(ctx, group.ID, "", "")
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(roster) != 3 {
		t.Fatalf("expected 3 students, got %d", len(roster))
	}
	if roster[0].LastName != "Cohen" || roster[1].LastName != "Levi" || roster[2].LastName != "Mizrahi" {
		t.Errorf("unexpected default order: %s, %s, %s", roster[0].LastName, roster[1].LastName, roster[2].LastName)
	}

	// First-name sort.
	roster, err = store.ListByGroup(ctx, group.ID, "", studentstore.SortFirstName)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if roster[0].FirstName != "Avi" || roster[1].FirstName != "Dana" || roster[2].FirstName != "Noa" {
		t.Errorf("unexpected first-name order: %s, %s, %s", roster[0].FirstName, roster[1].FirstName, roster[2].FirstName)
	}

	// Case-insensitive substring search stays scoped to the group.
	roster, err = store.ListByGroup(ctx, group.ID, "dana", "")
	if err != nil {
		t.Fatalf("ListByGroup with search failed: %v", err)
	}
	if len(roster) != 1 || roster[0].IDNumber != "111111111" {
		t.Fatalf("expected only Dana Levi, got %d results", len(roster))
	}

	// ID-number substring search.
	roster, err = store.ListByGroup(ctx, group.ID, "2222", "")
	if err != nil {
		t.Fatalf("ListByGroup with id search failed: %v", err)
	}
	if len(roster) != 1 || roster[0].LastName != "Mizrahi" {
		t.Fatalf("expected only Avi Mizrahi, got %d results", len(roster))
	}
}

func TestStore_ClearGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	s := fixtures.CreateStudent(ctx, "Dana", "Levi", "111111111", grade.ID, group.ID)

	n, err := store.ClearGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ClearGroup failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 modified, got %d", n)
	}

	got, err := store.GetByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.GroupID != nil {
		t.Errorf("expected group_id cleared, got %v", got.GroupID)
	}
	if got.GradeID == nil {
		t.Error("expected grade_id to survive group removal")
	}
}

func TestStore_CountByGrade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade7 := fixtures.CreateGrade(ctx, "ז")
	grade8 := fixtures.CreateGrade(ctx, "ח")
	group := fixtures.CreateGroup(ctx, "ז-1", grade7.ID)
	fixtures.CreateStudent(ctx, "Dana", "Levi", "111111111", grade7.ID, group.ID)
	fixtures.CreateStudent(ctx, "Noa", "Cohen", "222222222", grade7.ID, group.ID)

	n, err := store.CountByGrade(ctx, grade7.ID)
	if err != nil {
		t.Fatalf("CountByGrade failed: %v", err)
	}
	if n != 2 {
		t.Errorf("grade ז count: got %d, want 2", n)
	}

	n, err = store.CountByGrade(ctx, grade8.ID)
	if err != nil {
		t.Fatalf("CountByGrade failed: %v", err)
	}
	if n != 0 {
		t.Errorf("grade ח count: got %d, want 0", n)
	}
}

func TestStore_Search_WithRefIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := studentstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	inGroup := fixtures.CreateStudent(ctx, "Dana", "Levi", "111111111", grade.ID, group.ID)
	fixtures.CreateUnassignedStudent(ctx, "Noa", "Cohen", "222222222")

	// A term matching no name still returns students assigned to the
	// given group ids.
	list, err := store.Search(ctx, "zzz", "", nil, []primitive.ObjectID{group.ID})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != inGroup.ID {
		t.Fatalf("expected only the group member, got %d results", len(list))
	}

	// Name matches still work alongside ref ids.
	list, err = store.Search(ctx, "coh", "", nil, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(list) != 1 || list[0].LastName != "Cohen" {
		t.Fatalf("expected Cohen only, got %d results", len(list))
	}
}
