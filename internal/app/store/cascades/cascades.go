// internal/app/store/cascades/cascades.go

// Package cascades sequences the multi-collection deletions. Removing a
// grade takes its groups, its students, and the students' assessments and
// attendance with it; removing a group only detaches its students.
package cascades

import (
	"context"

	assessmentstore "github.com/arikst/schoolhub/internal/app/store/assessments"
	attendancestore "github.com/arikst/schoolhub/internal/app/store/attendance"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	groupstore "github.com/arikst/schoolhub/internal/app/store/groups"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GradeResult reports how many documents a grade deletion removed from
// each collection.
type GradeResult struct {
	Groups      int64
	Students    int64
	Assessments int64
	Attendance  int64
}

// DeleteGrade removes a grade and everything under it. Student records
// (assessments, attendance) go first so a failure partway leaves no rows
// pointing at students that no longer exist.
func DeleteGrade(ctx context.Context, db *mongo.Database, gradeID primitive.ObjectID) (GradeResult, error) {
	var res GradeResult

	students := studentstore.New(db)
	ids, err := students.IDsByGrade(ctx, gradeID)
	if err != nil {
		return res, err
	}

	if res.Assessments, err = assessmentstore.New(db).DeleteByStudents(ctx, ids); err != nil {
		return res, err
	}
	if res.Attendance, err = attendancestore.New(db).DeleteByStudents(ctx, ids); err != nil {
		return res, err
	}
	if res.Students, err = students.DeleteByGrade(ctx, gradeID); err != nil {
		return res, err
	}
	if res.Groups, err = groupstore.New(db).DeleteByGrade(ctx, gradeID); err != nil {
		return res, err
	}
	if _, err = gradestore.New(db).Delete(ctx, gradeID); err != nil {
		return res, err
	}
	return res, nil
}

// DeleteGroup removes a group and detaches its students. The students keep
// their grade and records; only the group reference is cleared. Returns how
// many students were detached.
func DeleteGroup(ctx context.Context, db *mongo.Database, groupID primitive.ObjectID) (int64, error) {
	detached, err := studentstore.New(db).ClearGroup(ctx, groupID)
	if err != nil {
		return 0, err
	}
	if _, err := groupstore.New(db).Delete(ctx, groupID); err != nil {
		return detached, err
	}
	return detached, nil
}
