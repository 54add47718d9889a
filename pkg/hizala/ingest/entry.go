package ingest

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultPageBreak is the conventional page-break marker token.
const DefaultPageBreak = "|"

// Entry is one token and its lemma as produced by an upstream tokenizer.
type Entry struct {
	Token string
	Lemma string
}

// Page is the ordered run of entries between two page breaks.
type Page []Entry

// Tokens returns the page's tokens in order.
func (p Page) Tokens() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.Token
	}
	return out
}

// Lemmas returns the page's lemmas in order.
func (p Page) Lemmas() []string {
	out := make([]string, len(p))
	for i, e := range p {
		out[i] = e.Lemma
	}
	return out
}

// SplitPages cuts a stream at every page-break marker. A marker always closes
// the current page, even an empty one; a trailing non-empty run becomes the
// final page. An empty stream yields no pages.
func SplitPages(entries []Entry, marker string) []Page {
	if marker == "" {
		marker = DefaultPageBreak
	}
	var pages []Page
	var current Page
	for _, e := range entries {
		if e.Token == marker {
			pages = append(pages, current)
			current = nil
			continue
		}
		current = append(current, e)
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// Digest fingerprints a stream so a resumed run can detect changed inputs.
func Digest(entries []Entry) string {
	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e.Token))
		h.Write([]byte{0})
		h.Write([]byte(e.Lemma))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
