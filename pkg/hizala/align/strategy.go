package align

import "github.com/cognicore/hizala/pkg/hizala/similarity"

// Move is the outcome of a successful strategy: the slave index to link the
// current master token to, the slave cursor to continue from, and the rule.
type Move struct {
	Slave  int
	Cursor int
	Rule   Rule
}

// Strategy is one entry of a pass's policy table. Try inspects the master
// token at ei against the slave cursor qi and never mutates state.
type Strategy struct {
	Name string
	Try  func(v *view, ei, qi int) (Move, bool)
}

// view is the folded token material of one page pair.
type view struct {
	m, s  []string
	sim   similarity.Matcher
	p     Params
	bound int // backward pass: slave indices at or below bound are fixed
}

// ForwardStrategies is the forward pass policy in priority order.
var ForwardStrategies = []Strategy{
	{Name: "exact", Try: forwardExact},
	{Name: "slave-split", Try: forwardSlaveSplit},
	{Name: "master-split", Try: forwardMasterSplit},
	{Name: "skip", Try: forwardSkip},
	{Name: "fuzzy", Try: forwardFuzzy},
}

// BackwardStrategies is the backward pass policy in priority order. The
// cursor in a Move is the next backward position.
var BackwardStrategies = []Strategy{
	{Name: "exact", Try: backwardExact},
	{Name: "slave-split", Try: backwardSlaveSplit},
	{Name: "skip", Try: backwardSkip},
	{Name: "fuzzy", Try: backwardFuzzy},
}

func forwardExact(v *view, ei, qi int) (Move, bool) {
	if v.sim.Equal(v.m[ei], v.s[qi]) {
		return Move{Slave: qi, Cursor: qi + 1, Rule: RuleExact}, true
	}
	return Move{}, false
}

// forwardSlaveSplit links the master token to the first token of a slave run
// that spells it, consuming the whole run.
func forwardSlaveSplit(v *view, ei, qi int) (Move, bool) {
	for k := 2; k <= v.p.SplitMax; k++ {
		if qi+k > len(v.s) {
			break
		}
		if similarity.Concat(v.s, qi, k) == v.m[ei] {
			return Move{Slave: qi, Cursor: qi + k, Rule: RuleSlaveSplit}, true
		}
	}
	return Move{}, false
}

// forwardMasterSplit links only the first token of a master run that spells
// the slave token. The rest of the run is left for later passes.
func forwardMasterSplit(v *view, ei, qi int) (Move, bool) {
	for k := 2; k <= v.p.SplitMax; k++ {
		if ei+k > len(v.m) {
			break
		}
		if similarity.Concat(v.m, ei, k) == v.s[qi] {
			return Move{Slave: qi, Cursor: qi + 1, Rule: RuleMasterSplit}, true
		}
	}
	return Move{}, false
}

// forwardSkip treats up to MaxSkip slave tokens as insertions when the master
// token matches further ahead and the following tokens confirm it.
func forwardSkip(v *view, ei, qi int) (Move, bool) {
	for skip := 1; skip <= v.p.MaxSkip; skip++ {
		t := qi + skip
		if t >= len(v.s) {
			break
		}
		need := min(skip, v.p.ConfirmMax)

		if v.sim.Equal(v.m[ei], v.s[t]) && v.confirm(ei+1, t+1, need) {
			return Move{Slave: t, Cursor: t + 1, Rule: RuleSkip}, true
		}
		for k := 2; k <= v.p.SkipSplitMax; k++ {
			if t+k > len(v.s) {
				break
			}
			if similarity.Concat(v.s, t, k) == v.m[ei] && v.confirm(ei+1, t+k, need) {
				return Move{Slave: t, Cursor: t + k, Rule: RuleSkipSplit}, true
			}
		}
		if v.sim.Fuzzy(v.m[ei], v.s[t]) && v.confirm(ei+1, t+1, need) {
			return Move{Slave: t, Cursor: t + 1, Rule: RuleSkipFuzzy}, true
		}
	}
	return Move{}, false
}

func forwardFuzzy(v *view, ei, qi int) (Move, bool) {
	if v.sim.Fuzzy(v.m[ei], v.s[qi]) {
		return Move{Slave: qi, Cursor: qi + 1, Rule: RuleFuzzy}, true
	}
	return Move{}, false
}

// confirm reports whether need consecutive master tokens starting at ce line
// up with the slave side starting at cq. A step accepts an exact or fuzzy
// match, or a short slave run spelling the master token. Running off either
// page fails the confirmation.
func (v *view) confirm(ce, cq, need int) bool {
	ok := 0
	for ce < len(v.m) && cq < len(v.s) && ok < need {
		if v.sim.Fuzzy(v.m[ce], v.s[cq]) {
			ok++
			ce++
			cq++
			continue
		}
		found := false
		for k := 2; k <= v.p.ConfirmSplitMax; k++ {
			if cq+k > len(v.s) {
				break
			}
			if similarity.Concat(v.s, cq, k) == v.m[ce] {
				ok++
				ce++
				cq += k
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	return ok >= need
}

func backwardExact(v *view, ei, qi int) (Move, bool) {
	if v.sim.Equal(v.m[ei], v.s[qi]) {
		return Move{Slave: qi, Cursor: qi - 1, Rule: RuleBackExact}, true
	}
	return Move{}, false
}

// backwardSlaveSplit matches a slave run ending at the cursor and links the
// master token to the run's first token.
func backwardSlaveSplit(v *view, ei, qi int) (Move, bool) {
	for k := 2; k <= v.p.SplitMax; k++ {
		start := qi - k + 1
		if start < 0 || start <= v.bound {
			break
		}
		if similarity.Concat(v.s, start, k) == v.m[ei] {
			return Move{Slave: start, Cursor: qi - k, Rule: RuleBackSplit}, true
		}
	}
	return Move{}, false
}

func backwardSkip(v *view, ei, qi int) (Move, bool) {
	for skip := 1; skip <= v.p.BackwardSkip; skip++ {
		t := qi - skip
		if t <= v.bound {
			break
		}
		if v.sim.Equal(v.m[ei], v.s[t]) {
			return Move{Slave: t, Cursor: t - 1, Rule: RuleBackSkip}, true
		}
	}
	return Move{}, false
}

func backwardFuzzy(v *view, ei, qi int) (Move, bool) {
	if qi > v.bound && v.sim.Fuzzy(v.m[ei], v.s[qi]) {
		return Move{Slave: qi, Cursor: qi - 1, Rule: RuleBackFuzzy}, true
	}
	return Move{}, false
}
