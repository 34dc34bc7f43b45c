// internal/app/features/grades/handler.go
package grades

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	groupstore "github.com/arikst/schoolhub/internal/app/store/groups"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/auditlog"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the per-grade overview page and grade deletion.
type Handler struct {
	DB     *mongo.Database
	ErrLog *uierrors.ErrorLogger
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs a grades Handler. A nil audit logger is a no-op.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, ErrLog: errLog, Audit: auditLogger, Log: logger}
}

type groupRow struct {
	ID      string
	Name    string
	Teacher string
	Count   int64
}

type gradePageData struct {
	Title      string
	IsLoggedIn bool
	IsManager  bool
	Role       string
	UserName   string
	GradeID    string
	GradeName  string
	Groups     []groupRow
	Total      int64
}

// ServeGrade renders one grade level: its groups with student counts.
// GET /grades/{name} — the name may be an alias like 7th.
func (h *Handler) ServeGrade(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	grades := gradestore.New(h.DB)
	grade, err := grades.GetByName(ctx, name)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "No such grade.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grade", err, "A database error occurred.", "/")
		return
	}

	groupList, err := groupstore.New(h.DB).ListByGrade(ctx, grade.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing groups", err, "A database error occurred.", "/")
		return
	}

	students := studentstore.New(h.DB)

	role, uname, _, signedIn := authz.UserCtx(r)
	data := gradePageData{
		Title:      "Grade " + grade.Name,
		IsLoggedIn: signedIn,
		IsManager:  authz.IsManager(r),
		Role:       role,
		UserName:   uname,
		GradeID:    grade.ID.Hex(),
		GradeName:  grade.Name,
	}

	for _, g := range groupList {
		n, err := students.CountByGroup(ctx, g.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error counting group students", err, "A database error occurred.", "/")
			return
		}
		data.Groups = append(data.Groups, groupRow{
			ID:      g.ID.Hex(),
			Name:    g.Name,
			Teacher: g.Teacher,
			Count:   n,
		})
	}

	total, err := students.CountByGrade(ctx, grade.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error counting grade students", err, "A database error occurred.", "/")
		return
	}
	data.Total = total

	templates.Render(w, r, "grade_view", data)
}
