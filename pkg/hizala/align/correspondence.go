package align

import "fmt"

// Unmatched marks an index with no counterpart on the other side.
const Unmatched = -1

// Rule names the strategy that produced a link.
type Rule uint8

const (
	RuleNone Rule = iota
	RuleExact
	RuleSlaveSplit
	RuleMasterSplit
	RuleSkip
	RuleSkipSplit
	RuleSkipFuzzy
	RuleFuzzy
	RuleBackExact
	RuleBackSplit
	RuleBackSkip
	RuleBackFuzzy
	RuleGapExact
	RuleGapFuzzy
)

var ruleNames = [...]string{
	RuleNone:        "none",
	RuleExact:       "exact",
	RuleSlaveSplit:  "slave-split",
	RuleMasterSplit: "master-split",
	RuleSkip:        "skip",
	RuleSkipSplit:   "skip-split",
	RuleSkipFuzzy:   "skip-fuzzy",
	RuleFuzzy:       "fuzzy",
	RuleBackExact:   "backward-exact",
	RuleBackSplit:   "backward-split",
	RuleBackSkip:    "backward-skip",
	RuleBackFuzzy:   "backward-fuzzy",
	RuleGapExact:    "gap-exact",
	RuleGapFuzzy:    "gap-fuzzy",
}

func (r Rule) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return fmt.Sprintf("rule(%d)", r)
}

// Pair is one linked (master, slave) index pair.
type Pair struct {
	Master int
	Slave  int
	Rule   Rule
}

// Correspondence is the mutual index map between one master page and one
// slave page. Linked pairs never cross: master order and slave order agree.
type Correspondence struct {
	MasterToSlave []int
	SlaveToMaster []int
	// Rules records, per master index, the rule that linked it.
	Rules []Rule
}

// NewCorrespondence returns a correspondence with every index unmatched.
func NewCorrespondence(masterLen, slaveLen int) *Correspondence {
	c := &Correspondence{
		MasterToSlave: make([]int, masterLen),
		SlaveToMaster: make([]int, slaveLen),
		Rules:         make([]Rule, masterLen),
	}
	for i := range c.MasterToSlave {
		c.MasterToSlave[i] = Unmatched
	}
	for j := range c.SlaveToMaster {
		c.SlaveToMaster[j] = Unmatched
	}
	return c
}

func (c *Correspondence) link(master, slave int, rule Rule) {
	c.MasterToSlave[master] = slave
	c.SlaveToMaster[slave] = master
	c.Rules[master] = rule
}

// MasterLinked reports whether master index i has a counterpart.
func (c *Correspondence) MasterLinked(i int) bool { return c.MasterToSlave[i] != Unmatched }

// SlaveLinked reports whether slave index j has a counterpart.
func (c *Correspondence) SlaveLinked(j int) bool { return c.SlaveToMaster[j] != Unmatched }

// Pairs returns all links ordered by master index.
func (c *Correspondence) Pairs() []Pair {
	var pairs []Pair
	for i, j := range c.MasterToSlave {
		if j != Unmatched {
			pairs = append(pairs, Pair{Master: i, Slave: j, Rule: c.Rules[i]})
		}
	}
	return pairs
}

// RuleCounts tallies links per rule.
func (c *Correspondence) RuleCounts() map[Rule]int {
	counts := make(map[Rule]int)
	for i, j := range c.MasterToSlave {
		if j != Unmatched {
			counts[c.Rules[i]]++
		}
	}
	return counts
}

// Validate checks mutual consistency and order preservation.
func (c *Correspondence) Validate() error {
	for i, j := range c.MasterToSlave {
		if j == Unmatched {
			continue
		}
		if j < 0 || j >= len(c.SlaveToMaster) {
			return fmt.Errorf("master %d linked to out-of-range slave %d", i, j)
		}
		if c.SlaveToMaster[j] != i {
			return fmt.Errorf("master %d -> slave %d but slave %d -> master %d", i, j, j, c.SlaveToMaster[j])
		}
	}
	for j, i := range c.SlaveToMaster {
		if i == Unmatched {
			continue
		}
		if i < 0 || i >= len(c.MasterToSlave) || c.MasterToSlave[i] != j {
			return fmt.Errorf("slave %d -> master %d is not mirrored", j, i)
		}
	}

	pairs := c.Pairs()
	for k := 1; k < len(pairs); k++ {
		if pairs[k].Slave <= pairs[k-1].Slave {
			return fmt.Errorf("crossing links (%d,%d) and (%d,%d)",
				pairs[k-1].Master, pairs[k-1].Slave, pairs[k].Master, pairs[k].Slave)
		}
	}
	return nil
}
