// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a raw query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Digits trims and removes interior spaces and dashes from an identifier the
// user may have typed with separators (ID numbers, phone numbers).
func Digits(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
