// internal/app/features/students/types.go
package students

import (
	"github.com/arikst/schoolhub/internal/app/system/formutil"
)

// listRow is one student in the /students/ listing.
type listRow struct {
	ID        string
	FirstName string
	LastName  string
	IDNumber  string
	GradeName string
	GroupName string
}

type listData struct {
	formutil.Base
	Search string
	Rows   []listRow
}

// option is a dropdown entry for grade/group selects.
type option struct {
	ID       string
	Label    string
	Selected bool
}

// formData is the view model for the add/edit form. Field values echo the
// submitted input when validation fails; Errors carries one message per
// failing field, keyed by form field name.
type formData struct {
	formutil.Base
	StudentID    string
	FirstName    string
	LastName     string
	IDNumber     string
	Phone        string
	Address      string
	BirthDate    string
	Notes        string
	ProfileImage string
	Grades       []option
	Groups       []option
	Errors       map[string]string
	IsEdit       bool
}

// historyRow is one audit entry on the profile page.
type historyRow struct {
	Field     string
	OldValue  string
	NewValue  string
	User      string
	Timestamp string
}

type assessmentRow struct {
	Metric int
	Value  float64
	Date   string
	Notes  string
}

type attendanceRow struct {
	Date   string
	Status string
	Notes  string
}

type viewData struct {
	formutil.Base
	StudentID    string
	FirstName    string
	LastName     string
	IDNumber     string
	Phone        string
	Address      string
	BirthDate    string
	Notes        string
	ProfileImage string
	GradeName    string
	GroupName    string
	GroupID      string
	Assessments  []assessmentRow
	Attendance   []attendanceRow
	History      []historyRow
}
