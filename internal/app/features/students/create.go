// internal/app/features/students/create.go
package students

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/formutil"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeNewStudent renders the empty add-student form.
// GET /student/add/ — managers only.
func (h *Handler) ServeNewStudent(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can add students.", "/students/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	gradeOpts, groupOpts, err := h.buildOptions(ctx, "", "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grade/group options", err, "A database error occurred.", "/students/")
		return
	}

	data := formData{Grades: gradeOpts, Groups: groupOpts}
	formutil.SetBase(&data.Base, r, "Add Student", "/students/")
	templates.Render(w, r, "student_form", data)
}

// HandleCreateStudent creates a student from the submitted form.
// POST /student/add/ — managers only. Validation failures re-render the
// form with the submitted values echoed back; nothing is written.
func (h *Handler) HandleCreateStudent(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can add students.", "/students/")
		return
	}

	f := readForm(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	errs := f.validate()
	a, assignErrs, err := h.resolveAssignment(ctx, f)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error resolving grade/group", err, "A database error occurred.", "/students/")
		return
	}
	for field, msg := range assignErrs {
		errs[field] = msg
	}
	if len(errs) > 0 {
		h.renderForm(w, r, f, "", "", errs)
		return
	}

	imageName, msg := h.saveImage(r)
	if msg != "" {
		h.renderForm(w, r, f, "", "", map[string]string{"profile_image": msg})
		return
	}

	var st models.Student
	f.apply(&st, a)
	st.ProfileImage = imageName

	created, err := studentstore.New(h.DB).Create(ctx, st)
	if errors.Is(err, studentstore.ErrDuplicateIDNumber) {
		h.discardImage(imageName)
		h.renderForm(w, r, f, "", "", map[string]string{"id_number": "A student with this ID number already exists."})
		return
	}
	if err != nil {
		h.discardImage(imageName)
		h.ErrLog.LogServerError(w, r, "database error creating student", err, "A database error occurred.", "/students/")
		return
	}

	actor := authz.ActorName(r)
	if err := h.Audit.Created(ctx, audit.EntityStudent, created.ID.Hex(), created.FullName(), actor); err != nil {
		h.Log.Warn("audit write failed for student create",
			zap.String("student_id", created.ID.Hex()), zap.Error(err))
	}

	h.Log.Info("student created",
		zap.String("student_id", created.ID.Hex()),
		zap.String("id_number", created.IDNumber),
		zap.String("actor", actor))

	http.Redirect(w, r, "/student/"+created.ID.Hex()+"/", http.StatusSeeOther)
}

// renderForm re-renders the add/edit form with the submitted values and the
// per-field error messages. studentID is "" for the add form.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, f studentForm, studentID, profileImage string, errs map[string]string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	gradeOpts, groupOpts, err := h.buildOptions(ctx, f.GradeIDRaw, f.GroupIDRaw)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grade/group options", err, "A database error occurred.", "/students/")
		return
	}

	data := formData{
		StudentID:    studentID,
		FirstName:    f.FirstName,
		LastName:     f.LastName,
		IDNumber:     f.IDNumber,
		Phone:        f.Phone,
		Address:      f.Address,
		BirthDate:    f.BirthDate,
		Notes:        f.Notes,
		ProfileImage: profileImage,
		Grades:       gradeOpts,
		Groups:       groupOpts,
		Errors:       errs,
		IsEdit:       studentID != "",
	}
	title := "Add Student"
	if data.IsEdit {
		title = "Edit Student"
	}
	formutil.SetBase(&data.Base, r, title, "/students/")
	if len(errs) > 0 {
		data.SetError("Please correct the highlighted fields.")
	}
	templates.Render(w, r, "student_form", data)
}
