// internal/app/features/home/handler.go
package home

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// landingGrades are the grade levels shown on the landing page, in display
// order. A level with no grade record simply counts zero.
var landingGrades = []string{"ז", "ח", "ט"}

// Handler serves the landing page.
type Handler struct {
	DB     *mongo.Database
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler constructs a home Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, ErrLog: errLog, Log: logger}
}

type gradeCard struct {
	Label string
	Count int64
	URL   string
}

type landingData struct {
	Title      string
	IsLoggedIn bool
	IsManager  bool
	Role       string
	UserName   string
	Grades     []gradeCard
	Total      int64
}

// ServeLanding renders the landing page with per-grade student counts.
// GET /
func (h *Handler) ServeLanding(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	grades := gradestore.New(h.DB)
	students := studentstore.New(h.DB)

	role, name, _, signedIn := authz.UserCtx(r)
	data := landingData{
		Title:      "SchoolHub",
		IsLoggedIn: signedIn,
		IsManager:  authz.IsManager(r),
		Role:       role,
		UserName:   name,
	}

	for _, label := range landingGrades {
		card := gradeCard{Label: label, URL: "/grades/" + label}

		g, err := grades.GetByName(ctx, label)
		if err != nil {
			if !errors.Is(err, mongo.ErrNoDocuments) {
				h.ErrLog.LogServerError(w, r, "database error loading grade", err, "A database error occurred.", "/")
				return
			}
			// Missing grade level counts zero.
			data.Grades = append(data.Grades, card)
			continue
		}

		n, err := students.CountByGrade(ctx, g.ID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error counting students", err, "A database error occurred.", "/")
			return
		}
		card.Count = n
		data.Total += n
		data.Grades = append(data.Grades, card)
	}

	templates.Render(w, r, "home_landing", data)
}
