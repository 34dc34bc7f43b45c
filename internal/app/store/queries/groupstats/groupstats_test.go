package groupstats_test

import (
	"testing"
	"time"

	"github.com/arikst/schoolhub/internal/app/store/queries/groupstats"
	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/arikst/schoolhub/internal/testutil"
)

func TestForGroup_EmptyGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)

	stats, err := groupstats.ForGroup(ctx, db, group.ID)
	if err != nil {
		t.Fatalf("ForGroup failed: %v", err)
	}
	if stats.Present != 0 || stats.Absent != 0 || stats.Late != 0 {
		t.Errorf("expected zero attendance counts, got %+v", stats)
	}
	if stats.AvgAssessment != 0 {
		t.Errorf("expected 0 average for empty group, got %v", stats.AvgAssessment)
	}
}

func TestForGroup_CountsAndAverage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	other := fixtures.CreateGroup(ctx, "ז-2", grade.ID)

	s1 := fixtures.CreateStudent(ctx, "Dana", "Levi", "111111111", grade.ID, group.ID)
	s2 := fixtures.CreateStudent(ctx, "Noa", "Cohen", "222222222", grade.ID, group.ID)
	outsider := fixtures.CreateStudent(ctx, "Avi", "Mizrahi", "333333333", grade.ID, other.ID)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	fixtures.CreateAttendance(ctx, s1.ID, day, models.AttendancePresent)
	fixtures.CreateAttendance(ctx, s1.ID, day.AddDate(0, 0, 1), models.AttendanceAbsent)
	fixtures.CreateAttendance(ctx, s2.ID, day, models.AttendancePresent)
	fixtures.CreateAttendance(ctx, s2.ID, day.AddDate(0, 0, 1), models.AttendanceLate)
	fixtures.CreateAttendance(ctx, outsider.ID, day, models.AttendanceAbsent)

	fixtures.CreateAssessment(ctx, s1.ID, 1, 4, day)
	fixtures.CreateAssessment(ctx, s2.ID, 1, 3, day)
	fixtures.CreateAssessment(ctx, s2.ID, 2, 3, day)
	fixtures.CreateAssessment(ctx, outsider.ID, 1, 1, day)

	stats, err := groupstats.ForGroup(ctx, db, group.ID)
	if err != nil {
		t.Fatalf("ForGroup failed: %v", err)
	}
	if stats.Present != 2 {
		t.Errorf("Present: got %d, want 2", stats.Present)
	}
	if stats.Absent != 1 {
		t.Errorf("Absent: got %d, want 1", stats.Absent)
	}
	if stats.Late != 1 {
		t.Errorf("Late: got %d, want 1", stats.Late)
	}
	// (4+3+3)/3 = 3.333... rounds to one decimal.
	if stats.AvgAssessment != 3.3 {
		t.Errorf("AvgAssessment: got %v, want 3.3", stats.AvgAssessment)
	}
}
