// internal/app/features/students/edit.go
package students

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	groupstore "github.com/arikst/schoolhub/internal/app/store/groups"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/authz"
	"github.com/arikst/schoolhub/internal/app/system/formutil"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// snapshot captures the audited fields of a student before an edit, with
// grade and group resolved to their display names.
type snapshot struct {
	FirstName string
	LastName  string
	GradeName string
	GroupName string
}

func (h *Handler) takeSnapshot(ctx context.Context, st models.Student) snapshot {
	snap := snapshot{FirstName: st.FirstName, LastName: st.LastName}
	if st.GradeID != nil {
		if grade, err := gradestore.New(h.DB).GetByID(ctx, *st.GradeID); err == nil {
			snap.GradeName = grade.Name
		}
	}
	if st.GroupID != nil {
		if group, err := groupstore.New(h.DB).GetByID(ctx, *st.GroupID); err == nil {
			snap.GroupName = group.Name
		}
	}
	return snap
}

// ServeEditStudent renders the edit form pre-filled with the current
// values.
// GET /student/{id}/edit/ — managers only.
func (h *Handler) ServeEditStudent(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can edit students.", "/students/")
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

	selGrade, selGroup := "", ""
	if student.GradeID != nil {
		selGrade = student.GradeID.Hex()
	}
	if student.GroupID != nil {
		selGroup = student.GroupID.Hex()
	}
	gradeOpts, groupOpts, err := h.buildOptions(ctx, selGrade, selGroup)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading grade/group options", err, "A database error occurred.", "/students/")
		return
	}

	data := formData{
		StudentID:    student.ID.Hex(),
		FirstName:    student.FirstName,
		LastName:     student.LastName,
		IDNumber:     student.IDNumber,
		Phone:        student.Phone,
		Address:      student.Address,
		Notes:        student.Notes,
		ProfileImage: student.ProfileImage,
		Grades:       gradeOpts,
		Groups:       groupOpts,
		IsEdit:       true,
	}
	if student.BirthDate != nil {
		data.BirthDate = student.BirthDate.Format(dateLayout)
	}
	formutil.SetBase(&data.Base, r, "Edit Student", "/student/"+student.ID.Hex()+"/")
	templates.Render(w, r, "student_form", data)
}

// HandleEditStudent applies the submitted form to an existing student and
// records one audit row per tracked field that actually changed.
// POST /student/{id}/edit/ — managers only.
func (h *Handler) HandleEditStudent(w http.ResponseWriter, r *http.Request) {
	if !authz.IsManager(r) {
		uierrors.RenderForbidden(w, r, "Only managers can edit students.", "/students/")
		return
	}

	sid := chi.URLParam(r, "id")
	studentOID, err := primitive.ObjectIDFromHex(sid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "No such student.", "/students/")
		return
	}

	f := readForm(r)

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
		h.renderForm(w, r, f, sid, student.ProfileImage, errs)
		return
	}

	imageName, msg := h.saveImage(r)
	if msg != "" {
		h.renderForm(w, r, f, sid, student.ProfileImage, map[string]string{"profile_image": msg})
		return
	}

	before := h.takeSnapshot(ctx, student)

	oldImage := student.ProfileImage
	f.apply(&student, a)
	if imageName != "" {
		student.ProfileImage = imageName
	}

	if err := store.Update(ctx, student); err != nil {
		if errors.Is(err, studentstore.ErrDuplicateIDNumber) {
			h.discardImage(imageName)
			h.renderForm(w, r, f, sid, oldImage, map[string]string{"id_number": "A student with this ID number already exists."})
			return
		}
		h.discardImage(imageName)
		h.ErrLog.LogServerError(w, r, "database error updating student", err, "A database error occurred.", "/students/")
		return
	}

	if imageName != "" && oldImage != "" && h.Images != nil {
		if err := h.Images.Remove(oldImage); err != nil {
			h.Log.Warn("could not remove replaced profile image",
				zap.String("image", oldImage), zap.Error(err))
		}
	}

	h.auditEdit(ctx, studentOID.Hex(), before, snapshot{
		FirstName: student.FirstName,
		LastName:  student.LastName,
		GradeName: a.GradeName,
		GroupName: a.GroupName,
	}, authz.ActorName(r))

	http.Redirect(w, r, "/student/"+sid+"/", http.StatusSeeOther)
}

// auditEdit writes one row per tracked field whose value changed.
func (h *Handler) auditEdit(ctx context.Context, entityID string, before, after snapshot, actor string) {
	tracked := []struct {
		field    string
		old, new string
	}{
		{"first_name", before.FirstName, after.FirstName},
		{"last_name", before.LastName, after.LastName},
		{"grade", before.GradeName, after.GradeName},
		{"group", before.GroupName, after.GroupName},
	}
	for _, tf := range tracked {
		if _, err := h.Audit.FieldChanged(ctx, audit.EntityStudent, entityID, tf.field, tf.old, tf.new, actor); err != nil {
			h.Log.Warn("audit write failed for student edit",
				zap.String("student_id", entityID),
				zap.String("field", tf.field),
				zap.Error(err))
		}
	}
}
