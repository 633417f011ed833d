package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

// SanitizeText strips every HTML tag (and the content of script-like elements)
// from user supplied text. Text without markup is returned as given apart from
// surrounding whitespace. Ampersands are escaped before tokenizing so that
// entity-like runs such as "&param" or "&reg" survive untouched.
func SanitizeText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "<") {
		return s
	}
	cleaned := textPolicy.Sanitize(strings.ReplaceAll(s, "&", "&amp;"))
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// SanitizeAll sanitizes each pointed-to string in place. Nil pointers are skipped.
func SanitizeAll(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = SanitizeText(*f)
		}
	}
}
