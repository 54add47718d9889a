package ingest

// DefaultPunctuation lists the characters that never count as meaningful
// signature material.
const DefaultPunctuation = ".,!?;:\"'-|()[]{}…–—"

// Punctuation is a set of punctuation characters.
type Punctuation map[rune]struct{}

// NewPunctuation builds a set from the characters of chars.
func NewPunctuation(chars string) Punctuation {
	p := make(Punctuation, len(chars))
	for _, r := range chars {
		p[r] = struct{}{}
	}
	return p
}

// IsPunct reports whether every character of token is punctuation.
func (p Punctuation) IsPunct(token string) bool {
	for _, r := range token {
		if _, ok := p[r]; !ok {
			return false
		}
	}
	return true
}

// Signature returns up to n leading tokens of the page that are not pure
// punctuation. It is the page's cheap fingerprint for page matching.
func Signature(page Page, n int, punct Punctuation) []string {
	var sig []string
	for _, e := range page {
		if len(sig) >= n {
			break
		}
		if punct.IsPunct(e.Token) {
			continue
		}
		sig = append(sig, e.Token)
	}
	return sig
}
