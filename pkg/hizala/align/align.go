// Package align computes the token correspondence of one master/slave page
// pair. It runs three passes over the folded tokens: a forward pass driven by
// ForwardStrategies, a backward pass over the unresolved tail driven by
// BackwardStrategies, and a gap-filling sweep between resolved anchors.
//
// Every pass only links indices that keep the correspondence order
// preserving, so no global solver is needed.
package align

import "github.com/cognicore/hizala/pkg/hizala/similarity"

// Aligner aligns page pairs. It is safe for concurrent use.
type Aligner struct {
	params Params
	folder similarity.Folder
	sim    similarity.Matcher
}

// New creates an aligner.
func New(params Params, folder similarity.Folder, sim similarity.Matcher) *Aligner {
	return &Aligner{params: params, folder: folder, sim: sim}
}

// Default returns an aligner with reference parameters and default folding.
func Default() *Aligner {
	return New(DefaultParams(), similarity.Folder{}, similarity.DefaultMatcher())
}

// Align links master tokens to slave tokens. If either side is empty the
// result has no links and every token is unmatched.
func (a *Aligner) Align(master, slave []string) *Correspondence {
	c := NewCorrespondence(len(master), len(slave))
	if len(master) == 0 || len(slave) == 0 {
		return c
	}

	v := &view{
		m:     a.folder.FoldAll(master),
		s:     a.folder.FoldAll(slave),
		sim:   a.sim,
		p:     a.params,
		bound: Unmatched,
	}
	v.forward(c)
	v.backward(c)
	v.fillGaps(c)
	return c
}

// forward walks master tokens with a slave cursor. A master token no strategy
// accepts stays unmatched and the cursor does not move.
func (v *view) forward(c *Correspondence) {
	qi := 0
	for ei := range v.m {
		if qi >= len(v.s) {
			return
		}
		if mv, ok := apply(ForwardStrategies, v, ei, qi); ok {
			c.link(ei, mv.Slave, mv.Rule)
			qi = mv.Cursor
		}
	}
}

// backward resolves the unmatched tail from the end of both pages. It never
// reaches at or below the last forward-linked slave index, nor before the
// last forward-linked master index, so it cannot cross forward links.
func (v *view) backward(c *Correspondence) {
	lastMaster := Unmatched
	v.bound = Unmatched
	for ei, qi := range c.MasterToSlave {
		if qi != Unmatched {
			lastMaster = ei
			v.bound = max(v.bound, qi)
		}
	}

	qi := len(v.s) - 1
	for ei := len(v.m) - 1; ei > lastMaster; ei-- {
		if qi <= v.bound {
			return
		}
		if mv, ok := apply(BackwardStrategies, v, ei, qi); ok {
			c.link(ei, mv.Slave, mv.Rule)
			qi = mv.Cursor
		}
	}
}

// fillGaps sweeps each span between consecutive links (and the spans before
// the first and after the last) with two pointers, linking exact or fuzzy
// matches and giving up on everything else.
func (v *view) fillGaps(c *Correspondence) {
	prevM, prevS := -1, -1
	for _, p := range c.Pairs() {
		if p.Master > prevM+1 || p.Slave > prevS+1 {
			v.fillGap(c, prevM+1, p.Master, prevS+1, p.Slave)
		}
		prevM, prevS = p.Master, p.Slave
	}
	v.fillGap(c, prevM+1, len(v.m), prevS+1, len(v.s))
}

func (v *view) fillGap(c *Correspondence, m0, m1, s0, s1 int) {
	ei, qi := m0, s0
	for ei < m1 && qi < s1 {
		if c.MasterLinked(ei) {
			ei++
			continue
		}
		if c.SlaveLinked(qi) {
			qi++
			continue
		}
		switch {
		case v.sim.Equal(v.m[ei], v.s[qi]):
			c.link(ei, qi, RuleGapExact)
		case v.sim.Fuzzy(v.m[ei], v.s[qi]):
			c.link(ei, qi, RuleGapFuzzy)
		}
		ei++
		qi++
	}
}

func apply(strategies []Strategy, v *view, ei, qi int) (Move, bool) {
	for _, st := range strategies {
		if mv, ok := st.Try(v, ei, qi); ok {
			return mv, true
		}
	}
	return Move{}, false
}
