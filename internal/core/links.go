package core

import (
	"regexp"
)

// urlPattern matches an HTTP or HTTPS URL up to the first whitespace,
// quote, angle bracket or square bracket.
var urlPattern = regexp.MustCompile(`https?://[^\s"'<>\[\]]+`)

// FirstLink scans the parts in order and returns the first URL found,
// short-circuiting as soon as a part yields a match.
func FirstLink(parts []BodyPart) (string, bool) {
	for _, part := range parts {
		if match := urlPattern.FindString(part.Text); match != "" {
			return match, true
		}
	}
	return "", false
}
