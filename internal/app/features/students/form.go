// internal/app/features/students/form.go
package students

import (
	"context"
	"errors"
	"net/http"
	"strings"

	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	groupstore "github.com/arikst/schoolhub/internal/app/store/groups"
	"github.com/arikst/schoolhub/internal/app/system/htmlsanitize"
	"github.com/arikst/schoolhub/internal/app/system/imagestore"
	"github.com/arikst/schoolhub/internal/app/system/inputval"
	"github.com/arikst/schoolhub/internal/app/system/normalize"
	"github.com/arikst/schoolhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// studentForm carries the raw submitted values of the add/edit form.
type studentForm struct {
	FirstName  string
	LastName   string
	IDNumber   string
	Phone      string
	Address    string
	BirthDate  string
	Notes      string
	GradeIDRaw string
	GroupIDRaw string
}

// readForm parses the submission. The form may be multipart (image upload)
// or plain urlencoded.
func readForm(r *http.Request) studentForm {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		_ = r.ParseMultipartForm(imagestore.MaxUploadBytes)
	} else {
		_ = r.ParseForm()
	}
	return studentForm{
		FirstName:  normalize.Name(r.FormValue("first_name")),
		LastName:   normalize.Name(r.FormValue("last_name")),
		IDNumber:   normalize.Digits(r.FormValue("id_number")),
		Phone:      normalize.Digits(r.FormValue("phone")),
		Address:    htmlsanitize.PlainText(r.FormValue("address")),
		BirthDate:  strings.TrimSpace(r.FormValue("birth_date")),
		Notes:      htmlsanitize.Sanitize(r.FormValue("notes")),
		GradeIDRaw: strings.TrimSpace(r.FormValue("grade_id")),
		GroupIDRaw: strings.TrimSpace(r.FormValue("group_id")),
	}
}

// validate checks the field formats and returns one user-facing message per
// failing field, keyed by form field name (empty map when the form is
// acceptable).
func (f studentForm) validate() map[string]string {
	errs := map[string]string{}
	if f.FirstName == "" {
		errs["first_name"] = "First name is required."
	}
	if f.LastName == "" {
		errs["last_name"] = "Last name is required."
	}
	if !inputval.ValidIDNumber(f.IDNumber) {
		errs["id_number"] = "ID number must be exactly 9 digits."
	}
	if f.Phone != "" && !inputval.ValidPhone(f.Phone) {
		errs["phone"] = "Phone must be 10 digits starting with 0."
	}
	if f.BirthDate != "" {
		if _, err := inputval.ParseDate(f.BirthDate); err != nil {
			errs["birth_date"] = "Birth date must be YYYY-MM-DD."
		}
	}
	return errs
}

// assignment is the resolved grade/group pair of a form submission.
type assignment struct {
	GradeID   *primitive.ObjectID
	GroupID   *primitive.ObjectID
	GradeName string
	GroupName string
}

// resolveAssignment turns the submitted grade/group ids into references,
// enforcing through the group store that a chosen group belongs to the
// chosen grade. Problems come back as field-keyed user-facing messages.
func (h *Handler) resolveAssignment(ctx context.Context, f studentForm) (assignment, map[string]string, error) {
	var a assignment
	errs := map[string]string{}

	if f.GradeIDRaw != "" {
		oid, err := primitive.ObjectIDFromHex(f.GradeIDRaw)
		if err != nil {
			errs["grade_id"] = "Unknown grade."
			return a, errs, nil
		}
		grade, err := gradestore.New(h.DB).GetByID(ctx, oid)
		if errors.Is(err, mongo.ErrNoDocuments) {
			errs["grade_id"] = "Unknown grade."
			return a, errs, nil
		}
		if err != nil {
			return a, nil, err
		}
		a.GradeID = &grade.ID
		a.GradeName = grade.Name
	}

	if f.GroupIDRaw != "" {
		if a.GradeID == nil {
			errs["group_id"] = "Choose a grade before choosing a group."
			return a, errs, nil
		}
		oid, err := primitive.ObjectIDFromHex(f.GroupIDRaw)
		if err != nil {
			errs["group_id"] = "Unknown group."
			return a, errs, nil
		}
		groups := groupstore.New(h.DB)
		ok, err := groups.BelongsToGrade(ctx, oid, *a.GradeID)
		if err != nil {
			return a, nil, err
		}
		if !ok {
			errs["group_id"] = "The group does not belong to the chosen grade."
			return a, errs, nil
		}
		group, err := groups.GetByID(ctx, oid)
		if err != nil {
			return a, nil, err
		}
		a.GroupID = &group.ID
		a.GroupName = group.Name
	}

	return a, errs, nil
}

// apply copies the form values onto a student record. Grade/group come from
// the resolved assignment.
func (f studentForm) apply(st *models.Student, a assignment) {
	st.FirstName = f.FirstName
	st.LastName = f.LastName
	st.IDNumber = f.IDNumber
	st.Phone = f.Phone
	st.Address = f.Address
	st.Notes = f.Notes
	st.GradeID = a.GradeID
	st.GroupID = a.GroupID
	if f.BirthDate != "" {
		if d, err := inputval.ParseDate(f.BirthDate); err == nil {
			st.BirthDate = &d
		}
	} else {
		st.BirthDate = nil
	}
}

// buildOptions loads the grade and group dropdowns, marking the current
// selection.
func (h *Handler) buildOptions(ctx context.Context, selGrade, selGroup string) ([]option, []option, error) {
	grades, err := gradestore.New(h.DB).List(ctx)
	if err != nil {
		return nil, nil, err
	}
	groups, err := groupstore.New(h.DB).List(ctx)
	if err != nil {
		return nil, nil, err
	}

	gradeOpts := make([]option, 0, len(grades))
	for _, g := range grades {
		gradeOpts = append(gradeOpts, option{ID: g.ID.Hex(), Label: g.Name, Selected: g.ID.Hex() == selGrade})
	}
	groupOpts := make([]option, 0, len(groups))
	for _, g := range groups {
		groupOpts = append(groupOpts, option{ID: g.ID.Hex(), Label: g.Name, Selected: g.ID.Hex() == selGroup})
	}
	return gradeOpts, groupOpts, nil
}

// saveImage stores an uploaded profile image, if one was submitted. Returns
// the stored filename ("" when no file came in) and a user-facing message
// for rejected files.
func (h *Handler) saveImage(r *http.Request) (string, string) {
	if h.Images == nil || r.MultipartForm == nil {
		return "", ""
	}
	file, header, err := r.FormFile("profile_image")
	if err != nil {
		// No file field or empty selection.
		return "", ""
	}
	defer file.Close()

	name, err := h.Images.Save(file, header)
	if errors.Is(err, imagestore.ErrUnsupportedType) {
		return "", "Profile image must be a .jpg, .jpeg, .png, or .gif file."
	}
	if errors.Is(err, imagestore.ErrTooLarge) {
		return "", "Profile image must be 5 MB or smaller."
	}
	if err != nil {
		return "", "Could not store the profile image."
	}
	return name, ""
}

// discardImage removes a just-saved image that ended up unreferenced because
// the surrounding write failed.
func (h *Handler) discardImage(name string) {
	if name == "" || h.Images == nil {
		return
	}
	if err := h.Images.Remove(name); err != nil {
		h.Log.Warn("could not remove unreferenced profile image",
			zap.String("image", name), zap.Error(err))
	}
}
