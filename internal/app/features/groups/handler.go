// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	groupstore "github.com/arikst/schoolhub/internal/app/store/groups"
	"github.com/arikst/schoolhub/internal/app/store/queries/groupstats"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/auditlog"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/normalize"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the group pages: roster, search, the aggregated
// attendance/assessment figures, and the manager-only group management.
type Handler struct {
	DB     *mongo.Database
	ErrLog *uierrors.ErrorLogger
	Audit  *auditlog.Logger
	Log    *zap.Logger
}

// NewHandler constructs a groups Handler. A nil audit logger is a no-op.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, ErrLog: errLog, Audit: auditLogger, Log: logger}
}

type rosterRow struct {
	ID        string
	FirstName string
	LastName  string
	IDNumber  string
}

type groupPageData struct {
	Title      string
	IsLoggedIn bool
	IsManager  bool
	Role       string
	UserName   string
	GroupID    string
	GroupName  string
	GradeName  string
	Teacher    string
	Search     string
	Sort       string
	Roster     []rosterRow
	Present    int64
	Absent     int64
	Late       int64
	AvgScore   float64
}

// ServeGroupView renders the group page.
// GET /group/{id}?search=...&sort=first_name|last_name
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	gid := chi.URLParam(r, "id")
	groupOID, err := primitive.ObjectIDFromHex(gid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "No such group.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	group, err := groupstore.New(h.DB).GetByID(ctx, groupOID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "No such group.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading group", err, "A database error occurred.", "/")
		return
	}

	gradeName := ""
	if grade, err := gradestore.New(h.DB).GetByID(ctx, group.GradeID); err == nil {
		gradeName = grade.Name
	}

	search := normalize.QueryParam(query.Get(r, "search"))
	sortBy := query.Get(r, "sort")
	if sortBy != studentstore.SortFirstName {
		sortBy = studentstore.SortLastName
	}

	roster, err := studentstore.New(h.DB).ListByGroup(ctx, groupOID, search, sortBy)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading roster", err, "A database error occurred.", "/")
		return
	}

	stats, err := groupstats.ForGroup(ctx, h.DB, groupOID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error computing group stats", err, "A database error occurred.", "/")
		return
	}

	role, uname, _, signedIn := authz.UserCtx(r)
	data := groupPageData{
		Title:      group.Name,
		IsLoggedIn: signedIn,
		IsManager:  authz.IsManager(r),
		Role:       role,
		UserName:   uname,
		GroupID:    group.ID.Hex(),
		GroupName:  group.Name,
		GradeName:  gradeName,
		Teacher:    group.Teacher,
		Search:     search,
		Sort:       sortBy,
		Present:    stats.Present,
		Absent:     stats.Absent,
		Late:       stats.Late,
		AvgScore:   stats.AvgAssessment,
	}
	for _, s := range roster {
		data.Roster = append(data.Roster, rosterRow{
			ID:        s.ID.Hex(),
			FirstName: s.FirstName,
			LastName:  s.LastName,
			IDNumber:  s.IDNumber,
		})
	}

	templates.Render(w, r, "group_view", data)
}
