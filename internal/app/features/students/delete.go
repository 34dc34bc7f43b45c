// internal/app/features/students/delete.go
package students

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	assessmentstore "github.com/arikst/schoolhub/internal/app/store/assessments"
	attendancestore "github.com/arikst/schoolhub/internal/app/store/attendance"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDeleteStudent removes a student together with their assessments
// and attendance records. The audit trail keeps its rows, keyed by the
// student's id, and gains a final "deleted" entry.
// POST /student/{id}/delete/ — managers only.
func (h *Handler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can delete students.", "/students/")
		return
	}

	sid := chi.URLParam(r, "id")
	studentOID, err := primitive.ObjectIDFromHex(sid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "No such student.", "/students/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := studentstore.New(h.DB)
	student, err := store.GetByID(ctx, studentOID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "No such student.", "/students/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading student", err, "A database error occurred.", "/students/")
		return
	}

	if _, err := store.Delete(ctx, studentOID); err != nil {
		h.ErrLog.LogServerError(w, r, "database error deleting student", err, "A database error occurred.", "/students/")
		return
	}

	if _, err := assessmentstore.New(h.DB).DeleteByStudent(ctx, studentOID); err != nil {
		h.Log.Error("could not delete assessments for removed student",
			zap.String("student_id", sid), zap.Error(err))
	}
	if _, err := attendancestore.New(h.DB).DeleteByStudent(ctx, studentOID); err != nil {
		h.Log.Error("could not delete attendance for removed student",
			zap.String("student_id", sid), zap.Error(err))
	}

	if student.ProfileImage != "" && h.Images != nil {
		if err := h.Images.Remove(student.ProfileImage); err != nil {
			h.Log.Warn("could not remove profile image of deleted student",
				zap.String("image", student.ProfileImage), zap.Error(err))
		}
	}

	actor := authz.ActorName(r)
	if err := h.Audit.Deleted(ctx, audit.EntityStudent, sid, student.FullName(), actor); err != nil {
		h.Log.Warn("audit write failed for student delete",
			zap.String("student_id", sid), zap.Error(err))
	}

	h.Log.Info("student deleted",
		zap.String("student_id", sid),
		zap.String("actor", actor))

	http.Redirect(w, r, "/students/", http.StatusSeeOther)
}
