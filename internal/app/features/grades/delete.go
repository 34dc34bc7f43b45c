// internal/app/features/grades/delete.go
package grades

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	"github.com/arikst/schoolhub/internal/app/store/cascades"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleDeleteGrade removes a grade level with everything under it: its
// groups, its students, and the students' assessments and attendance. The
// audit trail keeps its rows and gains a final "deleted" entry for the grade.
// POST /grades/{name}/delete/ — managers only.
func (h *Handler) HandleDeleteGrade(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can delete grades.", "/")
		return
	}

	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	grade, err := gradestore.New(h.DB).GetByName(ctx, name)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "No such grade.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grade", err, "A database error occurred.", "/")
		return
	}

	res, err := cascades.DeleteGrade(ctx, h.DB, grade.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error deleting grade", err, "A database error occurred.", "/")
		return
	}

	actor := authz.ActorName(r)
	if err := h.Audit.Deleted(ctx, audit.EntityGrade, grade.ID.Hex(), grade.Name, actor); err != nil {
		h.Log.Warn("audit write failed for grade delete",
			zap.String("grade_id", grade.ID.Hex()), zap.Error(err))
	}

	h.Log.Info("grade deleted",
		zap.String("grade_id", grade.ID.Hex()),
		zap.String("grade", grade.Name),
		zap.Int64("groups", res.Groups),
		zap.Int64("students", res.Students),
		zap.Int64("assessments", res.Assessments),
		zap.Int64("attendance", res.Attendance),
		zap.String("actor", actor))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
