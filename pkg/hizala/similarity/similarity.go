// Package similarity holds the token comparison primitives shared by the page
// matcher and the token aligner. All comparisons operate on folded tokens; use
// a Folder to fold raw tokens once per page and compare the folded slices.
package similarity

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Folder lower-cases tokens for case-insensitive comparison.
// The zero value uses Unicode default lower-casing.
type Folder struct {
	locale string
	tag    language.Tag
}

// NewFolder returns a folder for the given locale. An empty locale selects
// Unicode default lower-casing; "tr" and "az" apply Turkic dotted/dotless i rules.
func NewFolder(locale string) (Folder, error) {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "":
		return Folder{}, nil
	case "tr":
		return Folder{locale: "tr", tag: language.Turkish}, nil
	case "az":
		return Folder{locale: "az", tag: language.Azerbaijani}, nil
	default:
		return Folder{}, fmt.Errorf("unsupported case locale %q", locale)
	}
}

// Locale returns the configured locale ("" for the default).
func (f Folder) Locale() string { return f.locale }

// Fold lower-cases s and normalizes it to NFC.
func (f Folder) Fold(s string) string {
	if f.locale == "" {
		return norm.NFC.String(strings.ToLower(s))
	}
	return norm.NFC.String(cases.Lower(f.tag).String(s))
}

// FoldAll folds every token, reusing one caser for the whole slice.
func (f Folder) FoldAll(tokens []string) []string {
	out := make([]string, len(tokens))
	if f.locale == "" {
		for i, t := range tokens {
			out[i] = norm.NFC.String(strings.ToLower(t))
		}
		return out
	}
	// Casers are stateful; one per call keeps FoldAll safe for concurrent pages.
	c := cases.Lower(f.tag)
	for i, t := range tokens {
		out[i] = norm.NFC.String(c.String(t))
	}
	return out
}

// Matcher decides equality and fuzzy similarity of folded tokens.
type Matcher struct {
	MinLength int     // both tokens need at least this many characters to be fuzzy-compared
	MinPrefix int     // minimum shared prefix length
	MinRatio  float64 // minimum shared prefix as a fraction of the shorter token
}

// DefaultMatcher returns the reference fuzzy thresholds (3, 3, 0.5).
func DefaultMatcher() Matcher {
	return Matcher{MinLength: 3, MinPrefix: 3, MinRatio: 0.5}
}

// Equal reports whether two folded tokens are identical.
func (m Matcher) Equal(a, b string) bool {
	return a == b
}

// Fuzzy reports whether two folded tokens are equal or share a long enough
// prefix. Tokens whose first characters differ never match.
func (m Matcher) Fuzzy(a, b string) bool {
	if a == b {
		return true
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la < m.MinLength || lb < m.MinLength {
		return false
	}
	ra, _ := utf8.DecodeRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	if ra != rb {
		return false
	}
	common := CommonPrefix(a, b)
	return common >= m.MinPrefix && float64(common) >= float64(min(la, lb))*m.MinRatio
}

// CommonPrefix returns the length in characters of the longest shared prefix.
func CommonPrefix(a, b string) int {
	n := 0
	for a != "" && b != "" {
		ra, sa := utf8.DecodeRuneInString(a)
		rb, sb := utf8.DecodeRuneInString(b)
		if ra != rb {
			break
		}
		n++
		a, b = a[sa:], b[sb:]
	}
	return n
}

// SharedPrefix reports whether both folded tokens have at least n characters
// and agree on the first n of them.
func SharedPrefix(a, b string, n int) bool {
	if utf8.RuneCountInString(a) < n || utf8.RuneCountInString(b) < n {
		return false
	}
	return CommonPrefix(a, b) >= n
}

// Concat joins count folded tokens starting at start, clipped to the slice bound.
func Concat(folded []string, start, count int) string {
	if start < 0 || start >= len(folded) || count <= 0 {
		return ""
	}
	end := min(start+count, len(folded))
	return strings.Join(folded[start:end], "")
}

var defaultMatcher = DefaultMatcher()

// ExactMatch reports case-insensitive equality of two raw tokens.
func ExactMatch(a, b string) bool {
	var f Folder
	return f.Fold(a) == f.Fold(b)
}

// FuzzyMatch applies the default fuzzy thresholds to two raw tokens.
func FuzzyMatch(a, b string) bool {
	var f Folder
	return defaultMatcher.Fuzzy(f.Fold(a), f.Fold(b))
}

// ConcatRun lower-cases and joins count raw tokens starting at start.
func ConcatRun(tokens []string, start, count int) string {
	if start < 0 || start >= len(tokens) || count <= 0 {
		return ""
	}
	end := min(start+count, len(tokens))
	var f Folder
	return strings.Join(f.FoldAll(tokens[start:end]), "")
}
