package utils

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans user supplied HTML to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SafeHTML sanitizes stored user HTML and marks the result as trusted for html/template.
// Content is kept raw in the database and cleaned only when rendered.
func SafeHTML(raw string) template.HTML {
	return template.HTML(Sanitize(raw))
}
