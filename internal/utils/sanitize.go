package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every HTML element and attribute. Policies are safe for
// concurrent use once built.
var strict = bluemonday.StrictPolicy()

// SanitizeMessage strips all markup from viewer-supplied text and trims
// surrounding whitespace. The result is safe to echo into any overlay.
func SanitizeMessage(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
