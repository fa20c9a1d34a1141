// Package match decides whether a free-text guess names a known answer.
package match

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/cases"
)

var suffixPattern = regexp.MustCompile(`\s*(?:[(\[].*|\s-\s.*)$`)

// Matcher compares guesses against answers after normalizing case,
// diacritics and punctuation.
type Matcher struct{}

func New() *Matcher { return &Matcher{} }

// Matches reports whether guess names answer. In exact mode the whole guess
// has to be the answer, give or take a typo. Otherwise the guess may also
// carry the answer as a run of whole words, and a parenthesised or dashed
// suffix of the answer ("(live)", "- remastered") is optional.
func (m *Matcher) Matches(answer, guess string, exact bool) bool {
	a := normalize(answer)
	g := normalize(guess)
	if a == "" || g == "" {
		return false
	}
	if near(a, g) {
		return true
	}
	if exact {
		return false
	}

	stripped := normalize(suffixPattern.ReplaceAllString(answer, ""))
	if stripped != "" && stripped != a && near(stripped, g) {
		return true
	}
	return containsWords(g, a) || (stripped != "" && containsWords(g, stripped))
}

func normalize(s string) string {
	s = cases.Fold().String(s)
	s = strings.ToLower(unidecode.Unidecode(s))
	s = strings.ReplaceAll(s, "&", " and ")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}

// near compares two normalized strings, ignoring a leading article and
// allowing an edit distance that grows with the answer length.
func near(answer, guess string) bool {
	answer = strings.TrimPrefix(answer, "the ")
	guess = strings.TrimPrefix(guess, "the ")
	if answer == guess {
		return true
	}
	return levenshtein.ComputeDistance(answer, guess) <= tolerance(len(answer))
}

func tolerance(n int) int {
	switch {
	case n <= 4:
		return 0
	case n <= 10:
		return 1
	default:
		return 2
	}
}

func containsWords(guess, answer string) bool {
	return strings.Contains(" "+guess+" ", " "+answer+" ")
}
