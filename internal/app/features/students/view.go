// internal/app/features/students/view.go
package students

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	assessmentstore "github.com/arikst/schoolhub/internal/app/store/assessments"
	attendancestore "github.com/arikst/schoolhub/internal/app/store/attendance"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	groupstore "github.com/arikst/schoolhub/internal/app/store/groups"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/formutil"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const dateLayout = "2006-01-02"

// ServeStudentView renders the student profile: personal details, the
// assessment and attendance history, and the audit trail for this record.
// GET /student/{id}/ — signed-in users only (enforced in routes).
func (h *Handler) ServeStudentView(w http.ResponseWriter, r *http.Request) {
	if _, _, _, ok := authz.UserCtx(r); !ok {
		uierrors.RenderUnauthorized(w, r, "")
		return
	}

	sid := chi.URLParam(r, "id")
	studentOID, err := primitive.ObjectIDFromHex(sid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "No such student.", "/students/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	student, err := studentstore.New(h.DB).GetByID(ctx, studentOID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "No such student.", "/students/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading student", err, "A database error occurred.", "/students/")
		return
	}

	data := viewData{
		StudentID:    student.ID.Hex(),
		FirstName:    student.FirstName,
		LastName:     student.LastName,
		IDNumber:     student.IDNumber,
		Phone:        student.Phone,
		Address:      student.Address,
		Notes:        student.Notes,
		ProfileImage: student.ProfileImage,
	}
	formutil.SetBase(&data.Base, r, student.FullName(), "/students/")

	if student.BirthDate != nil {
		data.BirthDate = student.BirthDate.Format(dateLayout)
	}
	if student.GradeID != nil {
		if grade, err := gradestore.New(h.DB).GetByID(ctx, *student.GradeID); err == nil {
			data.GradeName = grade.Name
		}
	}
	if student.GroupID != nil {
		if group, err := groupstore.New(h.DB).GetByID(ctx, *student.GroupID); err == nil {
			data.GroupName = group.Name
			data.GroupID = group.ID.Hex()
		}
	}

	assessments, err := assessmentstore.New(h.DB).ListByStudent(ctx, studentOID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading assessments", err, "A database error occurred.", "/students/")
		return
	}
	for _, a := range assessments {
		data.Assessments = append(data.Assessments, assessmentRow{
			Metric: a.Metric,
			Value:  a.Value,
			Date:   a.Date.Format(dateLayout),
			Notes:  a.Notes,
		})
	}

	attendance, err := attendancestore.New(h.DB).ListByStudent(ctx, studentOID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading attendance", err, "A database error occurred.", "/students/")
		return
	}
	for _, a := range attendance {
		data.Attendance = append(data.Attendance, attendanceRow{
			Date:   a.Date.Format(dateLayout),
			Status: a.Status,
			Notes:  a.Notes,
		})
	}

	history, err := audit.New(h.DB).ForEntity(ctx, audit.EntityStudent, studentOID.Hex(), 0)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading audit history", err, "A database error occurred.", "/students/")
		return
	}
	for _, entry := range history {
		data.History = append(data.History, historyRow{
			Field:     entry.Field,
			OldValue:  entry.OldValue,
			NewValue:  entry.NewValue,
			User:      entry.User,
			Timestamp: entry.Timestamp.Format("2006-01-02 15:04"),
		})
	}

	templates.Render(w, r, "student_view", data)
}
