// Package emit linearizes page correspondences into output rows and writes
// them as tab-separated text.
package emit

import (
	"github.com/cognicore/hizala/pkg/hizala/align"
	"github.com/cognicore/hizala/pkg/hizala/ingest"
)

// Row is one output line. An absent side has empty token and lemma.
type Row struct {
	MasterToken string
	MasterLemma string
	SlaveToken  string
	SlaveLemma  string
}

// Kind classifies a row by which sides are present.
type Kind int

const (
	Linked Kind = iota
	MasterOnly
	SlaveOnly
	Empty
)

// Kind reports which sides of the row carry a token.
func (r Row) Kind() Kind {
	switch {
	case r.MasterToken != "" && r.SlaveToken != "":
		return Linked
	case r.MasterToken != "":
		return MasterOnly
	case r.SlaveToken != "":
		return SlaveOnly
	default:
		return Empty
	}
}

// Rows emits one row per linked pair and one per unmatched token, in master
// order. Unmatched slave tokens are placed just before the next linked slave
// token that follows them; the rest trail the page in slave order.
func Rows(master, slave ingest.Page, c *align.Correspondence) []Row {
	rows := make([]Row, 0, max(len(master), len(slave)))
	emitted := make([]bool, len(slave))

	slaveOnly := func(j int) {
		rows = append(rows, Row{SlaveToken: slave[j].Token, SlaveLemma: slave[j].Lemma})
		emitted[j] = true
	}

	prev := -1
	for i, e := range master {
		j := c.MasterToSlave[i]
		if j == align.Unmatched {
			rows = append(rows, Row{MasterToken: e.Token, MasterLemma: e.Lemma})
			continue
		}
		for g := prev + 1; g < j; g++ {
			if !emitted[g] && !c.SlaveLinked(g) {
				slaveOnly(g)
			}
		}
		rows = append(rows, Row{
			MasterToken: e.Token,
			MasterLemma: e.Lemma,
			SlaveToken:  slave[j].Token,
			SlaveLemma:  slave[j].Lemma,
		})
		emitted[j] = true
		prev = j
	}

	for j := range slave {
		if !emitted[j] && !c.SlaveLinked(j) {
			slaveOnly(j)
		}
	}
	return rows
}

// Tally counts rows by kind.
type Tally struct {
	Rows       int
	Linked     int
	MasterOnly int
	SlaveOnly  int
}

// Add counts rows into the tally.
func (t *Tally) Add(rows []Row) {
	for _, r := range rows {
		t.Rows++
		switch r.Kind() {
		case Linked:
			t.Linked++
		case MasterOnly:
			t.MasterOnly++
		case SlaveOnly:
			t.SlaveOnly++
		}
	}
}
