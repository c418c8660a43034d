package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidRe   = regexp.MustCompile(`[^\w\s-]`)
	slugSeparatorRe = regexp.MustCompile(`[-\s]+`)
)

// Slugify turns a title into a URL-safe slug: accents are stripped, anything
// that is not a letter, digit, underscore, space or hyphen is dropped, and
// runs of spaces and hyphens collapse to a single hyphen.
//
//	"Hello World"            -> "hello-world"
//	"  Café: Crème Brûlée! " -> "cafe-creme-brulee"
//	"10 Productivity Hacks"  -> "10-productivity-hacks"
func Slugify(input string) string {
	s := stripMarks(input)
	s = slugInvalidRe.ReplaceAllString(strings.ToLower(s), "")
	s = strings.TrimSpace(s)
	s = slugSeparatorRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-_")
}

func stripMarks(input string) string {
	decomposed := norm.NFKD.String(input)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
