// internal/app/features/students/list.go
package students

import (
	"context"
	"net/http"
	"strings"

	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	groupstore "github.com/arikst/schoolhub/internal/app/store/groups"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/formutil"
	"github.com/arikst/schoolhub/internal/app/system/normalize"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// gradeNames loads the id->name map once per request; the school has a
// handful of grades and groups so this beats per-row lookups.
func (h *Handler) gradeNames(ctx context.Context) (map[primitive.ObjectID]string, error) {
	grades, err := gradestore.New(h.DB).List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[primitive.ObjectID]string, len(grades))
	for _, g := range grades {
		m[g.ID] = g.Name
	}
	return m, nil
}

func (h *Handler) groupNames(ctx context.Context) (map[primitive.ObjectID]string, error) {
	groups, err := groupstore.New(h.DB).List(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[primitive.ObjectID]string, len(groups))
	for _, g := range groups {
		m[g.ID] = g.Name
	}
	return m, nil
}

// ServeStudentsList renders the school-wide student listing with optional
// search.
// GET /students/?search=...
func (h *Handler) ServeStudentsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	search := normalize.QueryParam(query.Get(r, "search"))

	gradeByID, err := h.gradeNames(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grades", err, "A database error occurred.", "/")
		return
	}
	groupByID, err := h.groupNames(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading groups", err, "A database error occurred.", "/")
		return
	}

	// A term that names a grade or group pulls in everyone assigned there.
	var gradeIDs, groupIDs []primitive.ObjectID
	if search != "" {
		folded := text.Fold(search)
		for id, name := range gradeByID {
			if strings.Contains(text.Fold(name), folded) {
				gradeIDs = append(gradeIDs, id)
			}
		}
		for id, name := range groupByID {
			if strings.Contains(text.Fold(name), folded) {
				groupIDs = append(groupIDs, id)
			}
		}
	}

	list, err := studentstore.New(h.DB).Search(ctx, search, "", gradeIDs, groupIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error searching students", err, "A database error occurred.", "/")
		return
	}

	data := listData{Search: search}
	formutil.SetBase(&data.Base, r, "Students", "/")

	for _, s := range list {
		row := listRow{
			ID:        s.ID.Hex(),
			FirstName: s.FirstName,
			LastName:  s.LastName,
			IDNumber:  s.IDNumber,
		}
		if s.GradeID != nil {
			row.GradeName = gradeByID[*s.GradeID]
		}
		if s.GroupID != nil {
			row.GroupName = groupByID[*s.GroupID]
		}
		data.Rows = append(data.Rows, row)
	}

	templates.Render(w, r, "students_list", data)
}
