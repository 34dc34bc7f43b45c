// internal/app/system/inputval/inputval.go
//
// Reusable format checks for student form input. Handlers validate before
// any write and report per-field messages; the store's unique indexes remain
// the final word on uniqueness.
package inputval

import (
	"regexp"
	"time"
)

var (
	idNumberRe = regexp.MustCompile(`^\d{9}$`)
	phoneRe    = regexp.MustCompile(`^0\d{9}$`)
)

// ValidIDNumber reports whether s is exactly nine digits.
func ValidIDNumber(s string) bool {
	return idNumberRe.MatchString(s)
}

// ValidPhone reports whether s is a ten-digit phone number with a leading
// zero. Empty is allowed (phone is optional); callers check presence
// separately if they require it.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// ParseDate parses an HTML date input value (YYYY-MM-DD) in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// DayUTC truncates t to UTC midnight. Attendance uniqueness is per calendar
// day, so all attendance dates are stored this way.
func DayUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
