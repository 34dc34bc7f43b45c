// internal/app/features/groups/manage.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	"github.com/arikst/schoolhub/internal/app/store/cascades"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	groupstore "github.com/arikst/schoolhub/internal/app/store/groups"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/formutil"
	"github.com/arikst/schoolhub/internal/app/system/htmlsanitize"
	"github.com/arikst/schoolhub/internal/app/system/normalize"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// gradeOption is one entry of the grade dropdown on the group form.
type gradeOption struct {
	ID       string
	Label    string
	Selected bool
}

type groupFormData struct {
	formutil.Base
	GroupID     string
	Name        string
	Teacher     string
	Description string
	Grades      []gradeOption
	IsEdit      bool
}

// groupForm carries the raw submitted values of the add/edit group form.
type groupForm struct {
	Name        string
	Teacher     string
	Description string
	GradeIDRaw  string
}

func readGroupForm(r *http.Request) groupForm {
	_ = r.ParseForm()
	return groupForm{
		Name:        normalize.Name(r.FormValue("name")),
		Teacher:     normalize.Name(r.FormValue("teacher")),
		Description: htmlsanitize.PlainText(r.FormValue("description")),
		GradeIDRaw:  normalize.QueryParam(r.FormValue("grade_id")),
	}
}

func (h *Handler) gradeOptions(ctx context.Context, selected string) ([]gradeOption, error) {
	grades, err := gradestore.New(h.DB).List(ctx)
	if err != nil {
		return nil, err
	}
	opts := make([]gradeOption, 0, len(grades))
	for _, g := range grades {
		opts = append(opts, gradeOption{ID: g.ID.Hex(), Label: g.Name, Selected: g.ID.Hex() == selected})
	}
	return opts, nil
}

func (h *Handler) renderGroupForm(w http.ResponseWriter, r *http.Request, f groupForm, groupID, errMsg string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	opts, err := h.gradeOptions(ctx, f.GradeIDRaw)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grade options", err, "A database error occurred.", "/")
		return
	}

	data := groupFormData{
		GroupID:     groupID,
		Name:        f.Name,
		Teacher:     f.Teacher,
		Description: f.Description,
		Grades:      opts,
		IsEdit:      groupID != "",
	}
	title := "Add Group"
	if data.IsEdit {
		title = "Edit Group"
	}
	formutil.SetBase(&data.Base, r, title, "/")
	data.SetError(errMsg)
	templates.Render(w, r, "group_form", data)
}

// ServeNewGroup renders the empty add-group form.
// GET /group/add/ — managers only.
func (h *Handler) ServeNewGroup(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can add groups.", "/")
		return
	}
	h.renderGroupForm(w, r, groupForm{GradeIDRaw: normalize.QueryParam(query.Get(r, "grade"))}, "", "")
}

// HandleCreateGroup creates a group from the submitted form.
// POST /group/add/ — managers only.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can add groups.", "/")
		return
	}

	f := readGroupForm(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if f.Name == "" {
		h.renderGroupForm(w, r, f, "", "Group name is required.")
		return
	}
	gradeOID, err := primitive.ObjectIDFromHex(f.GradeIDRaw)
	if err != nil {
		h.renderGroupForm(w, r, f, "", "Choose a grade for the group.")
		return
	}
	grade, err := gradestore.New(h.DB).GetByID(ctx, gradeOID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.renderGroupForm(w, r, f, "", "Choose a grade for the group.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grade", err, "A database error occurred.", "/")
		return
	}

	created, err := groupstore.New(h.DB).Create(ctx, models.Group{
		Name:        f.Name,
		GradeID:     grade.ID,
		Teacher:     f.Teacher,
		Description: f.Description,
	})
	if errors.Is(err, groupstore.ErrDuplicateGroupName) {
		h.renderGroupForm(w, r, f, "", "A group with this name already exists.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error creating group", err, "A database error occurred.", "/")
		return
	}

	actor := authz.ActorName(r)
	if err := h.Audit.Created(ctx, audit.EntityGroup, created.ID.Hex(), created.Name, actor); err != nil {
		h.Log.Warn("audit write failed for group create",
			zap.String("group_id", created.ID.Hex()), zap.Error(err))
	}

	h.Log.Info("group created",
		zap.String("group_id", created.ID.Hex()),
		zap.String("grade", grade.Name),
		zap.String("actor", actor))

	http.Redirect(w, r, "/group/"+created.ID.Hex(), http.StatusSeeOther)
}

// ServeEditGroup renders the edit form pre-filled with the current values.
// The grade of an existing group is fixed; moving students between grades
// goes through the student form.
// GET /group/{id}/edit/ — managers only.
func (h *Handler) ServeEditGroup(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can edit groups.", "/")
		return
	}

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

	f := groupForm{
		Name:        group.Name,
		Teacher:     group.Teacher,
		Description: group.Description,
		GradeIDRaw:  group.GradeID.Hex(),
	}
	h.renderGroupForm(w, r, f, gid, "")
}

// HandleEditGroup applies the submitted form to an existing group and
// records one audit row per tracked field that actually changed.
// POST /group/{id}/edit/ — managers only.
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can edit groups.", "/")
		return
	}

	gid := chi.URLParam(r, "id")
	groupOID, err := primitive.ObjectIDFromHex(gid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "No such group.", "/")
		return
	}

	f := readGroupForm(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := groupstore.New(h.DB)
	group, err := store.GetByID(ctx, groupOID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		uierrors.RenderNotFound(w, r, "No such group.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading group", err, "A database error occurred.", "/")
		return
	}

	if f.Name == "" {
		h.renderGroupForm(w, r, f, gid, "Group name is required.")
		return
	}

	if err := store.UpdateInfo(ctx, groupOID, f.Name, f.Teacher, f.Description); err != nil {
		if errors.Is(err, groupstore.ErrDuplicateGroupName) {
			h.renderGroupForm(w, r, f, gid, "A group with this name already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "database error updating group", err, "A database error occurred.", "/")
		return
	}

	actor := authz.ActorName(r)
	tracked := []struct {
		field    string
		old, new string
	}{
		{"name", group.Name, f.Name},
		{"teacher", group.Teacher, f.Teacher},
	}
	for _, tf := range tracked {
		if _, err := h.Audit.FieldChanged(ctx, audit.EntityGroup, gid, tf.field, tf.old, tf.new, actor); err != nil {
			h.Log.Warn("audit write failed for group edit",
				zap.String("group_id", gid),
				zap.String("field", tf.field),
				zap.Error(err))
		}
	}

	http.Redirect(w, r, "/group/"+gid, http.StatusSeeOther)
}

// HandleDeleteGroup removes a group and detaches its students. Students keep
// their grade and all their records.
// POST /group/{id}/delete/ — managers only.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can delete groups.", "/")
		return
	}

	gid := chi.URLParam(r, "id")
	groupOID, err := primitive.ObjectIDFromHex(gid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "No such group.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
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

	detached, err := cascades.DeleteGroup(ctx, h.DB, groupOID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error deleting group", err, "A database error occurred.", "/")
		return
	}

	actor := authz.ActorName(r)
	if err := h.Audit.Deleted(ctx, audit.EntityGroup, gid, group.Name, actor); err != nil {
		h.Log.Warn("audit write failed for group delete",
			zap.String("group_id", gid), zap.Error(err))
	}

	h.Log.Info("group deleted",
		zap.String("group_id", gid),
		zap.Int64("students_detached", detached),
		zap.String("actor", actor))

	redirect := "/"
	if grade, err := gradestore.New(h.DB).GetByID(ctx, group.GradeID); err == nil {
		redirect = "/grades/" + grade.Name
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}
