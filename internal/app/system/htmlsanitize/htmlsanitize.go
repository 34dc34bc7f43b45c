// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans user-generated HTML, keeping common formatting tags but
// removing scripts, event handlers, and other dangerous content. Used for
// free-text fields (student notes, group descriptions).
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// PlainText strips all HTML tags from the input. Used for fields that should
// never contain markup (names, addresses).
func PlainText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
