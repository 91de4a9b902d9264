package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reSlugSpace   = regexp.MustCompile(`\s+`)
	reSlugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	reSlugHyphen  = regexp.MustCompile(`-+`)
)

// Slugify lower-cases s, drops diacritics, turns whitespace into hyphens,
// strips everything outside [a-z0-9-] and collapses hyphen runs.
// Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s = reSlugSpace.ReplaceAllString(b.String(), "-")
	s = reSlugInvalid.ReplaceAllString(s, "")
	s = reSlugHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
