package graph

import (
	"regexp"
	"strings"
)

// legalSuffixes are trailing corporate-form tokens that carry no
// identity information and are stripped before comparison.
var legalSuffixes = map[string]struct{}{
	"inc":          {},
	"corp":         {},
	"llc":          {},
	"ltd":          {},
	"co":           {},
	"company":      {},
	"corporation":  {},
	"incorporated": {},
}

var trailingParenthetical = regexp.MustCompile(`\([^()]*\)\s*$`)

// Normalize canonicalizes an entity name for comparison. It lower-cases
// the name, strips one trailing legal-entity suffix ("Tesla, Inc." ->
// "tesla"), strips a trailing parenthetical ("Meta Platforms (Facebook)"
// -> "meta platforms"), and collapses whitespace runs.
//
// Normalize is pure and total. A non-empty input never normalizes to
// the empty string: any stripping step that would empty the name is
// skipped instead.
func Normalize(name string) string {
	n := strings.ToLower(name)
	n = stripLegalSuffix(n)
	n = stripParenthetical(n)
	n = collapseWhitespace(n)
	if n == "" {
		return collapseWhitespace(strings.ToLower(name))
	}
	return n
}

func stripLegalSuffix(n string) string {
	fields := strings.Fields(n)
	if len(fields) < 2 {
		return n
	}
	last := strings.Trim(fields[len(fields)-1], ".,")
	if _, ok := legalSuffixes[last]; !ok {
		return n
	}
	rest := strings.Join(fields[:len(fields)-1], " ")
	rest = strings.TrimSpace(strings.TrimSuffix(rest, ","))
	if rest == "" {
		return n
	}
	return rest
}

func stripParenthetical(n string) string {
	stripped := trailingParenthetical.ReplaceAllString(n, "")
	if strings.TrimSpace(stripped) == "" {
		return n
	}
	return stripped
}

func collapseWhitespace(n string) string {
	return strings.Join(strings.Fields(n), " ")
}

// initials returns the concatenated first letters of the words in a
// normalized name: "international business machines" -> "ibm".
func initials(n string) string {
	var b strings.Builder
	for _, word := range strings.Fields(n) {
		r := []rune(word)
		if len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	return b.String()
}
