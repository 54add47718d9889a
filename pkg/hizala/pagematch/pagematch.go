// Package pagematch pairs master pages with slave pages by comparing the
// leading meaningful tokens of each page within a bounded lookahead window.
package pagematch

import (
	"github.com/cognicore/hizala/pkg/hizala/ingest"
	"github.com/cognicore/hizala/pkg/hizala/similarity"
)

// None marks the absent side of a one-sided pairing.
const None = -1

// Kind classifies a pairing.
type Kind int

const (
	Both Kind = iota
	MasterOnly
	SlaveOnly
)

func (k Kind) String() string {
	switch k {
	case Both:
		return "both"
	case MasterOnly:
		return "master-only"
	case SlaveOnly:
		return "slave-only"
	default:
		return "unknown"
	}
}

// Pairing relates a master page index to a slave page index. Either side may
// be None, never both.
type Pairing struct {
	Master int
	Slave  int
}

// Kind reports which sides are present.
func (p Pairing) Kind() Kind {
	switch {
	case p.Master == None:
		return SlaveOnly
	case p.Slave == None:
		return MasterOnly
	default:
		return Both
	}
}

// Config holds the page matching thresholds.
type Config struct {
	SignatureSize int     // leading meaningful tokens compared per page
	Window        int     // slave pages inspected per master page
	MinScore      float64 // minimum winning score to pair
	PrefixLength  int     // shared prefix that earns partial credit
}

// DefaultConfig returns the reference settings (3 tokens, 4 pages, 0.5).
func DefaultConfig() Config {
	return Config{
		SignatureSize: 3,
		Window:        4,
		MinScore:      0.5,
		PrefixLength:  3,
	}
}

// Matcher pairs page sequences.
type Matcher struct {
	cfg    Config
	punct  ingest.Punctuation
	folder similarity.Folder
}

// New creates a matcher. A nil punctuation set selects ingest.DefaultPunctuation.
func New(cfg Config, punct ingest.Punctuation, folder similarity.Folder) *Matcher {
	if punct == nil {
		punct = ingest.NewPunctuation(ingest.DefaultPunctuation)
	}
	return &Matcher{cfg: cfg, punct: punct, folder: folder}
}

// Match walks master pages in order with a slave cursor and returns pairings
// covering every page of both sides exactly once. Slave pages skipped over to
// reach a better candidate are emitted as slave-only at the point they were
// skipped; slave pages left after the last master page are appended.
func (m *Matcher) Match(master, slave []ingest.Page) []Pairing {
	pairs := make([]Pairing, 0, max(len(master), len(slave)))
	slaveSigs := make([][]string, len(slave))
	for i, p := range slave {
		slaveSigs[i] = m.signature(p)
	}

	cursor := 0
	for mi, page := range master {
		sig := m.signature(page)
		if len(sig) == 0 {
			// Nothing to compare: fall back to positional alignment.
			if cursor < len(slave) {
				pairs = append(pairs, Pairing{Master: mi, Slave: cursor})
				cursor++
			} else {
				pairs = append(pairs, Pairing{Master: mi, Slave: None})
			}
			continue
		}

		best, bestScore := None, 0.0
		for look := 0; look < m.cfg.Window && cursor+look < len(slave); look++ {
			si := cursor + look
			if len(slaveSigs[si]) == 0 {
				continue
			}
			if score := m.score(sig, slaveSigs[si]); score > bestScore {
				best, bestScore = si, score
			}
		}

		if best != None && bestScore >= m.cfg.MinScore {
			for si := cursor; si < best; si++ {
				pairs = append(pairs, Pairing{Master: None, Slave: si})
			}
			pairs = append(pairs, Pairing{Master: mi, Slave: best})
			cursor = best + 1
			continue
		}
		pairs = append(pairs, Pairing{Master: mi, Slave: None})
	}

	for ; cursor < len(slave); cursor++ {
		pairs = append(pairs, Pairing{Master: None, Slave: cursor})
	}
	return pairs
}

func (m *Matcher) signature(p ingest.Page) []string {
	return m.folder.FoldAll(ingest.Signature(p, m.cfg.SignatureSize, m.punct))
}

// score compares two folded signatures position by position.
func (m *Matcher) score(a, b []string) float64 {
	var s float64
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] == b[i]:
			s += 1
		case similarity.SharedPrefix(a[i], b[i], m.cfg.PrefixLength):
			s += 0.5
		}
	}
	return s
}

// Score compares two raw signatures with default folding: 1 per position that
// is equal ignoring case, 0.5 per position sharing a 3-character prefix.
func Score(a, b []string) float64 {
	m := New(DefaultConfig(), nil, similarity.Folder{})
	return m.score(m.folder.FoldAll(a), m.folder.FoldAll(b))
}
