package emit

import (
	"bytes"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/hizala/pkg/hizala/align"
	"github.com/cognicore/hizala/pkg/hizala/ingest"
)

func page(text string) ingest.Page {
	var p ingest.Page
	for _, tok := range strings.Fields(text) {
		p = append(p, ingest.Entry{Token: tok, Lemma: strings.ToLower(tok) + "_l"})
	}
	return p
}

func alignRows(master, slave ingest.Page) []Row {
	c := align.Default().Align(master.Tokens(), slave.Tokens())
	return Rows(master, slave, c)
}

func shape(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.MasterToken + "|" + r.SlaveToken
	}
	return out
}

func TestRowsSplitPieceFollowsItsWord(t *testing.T) {
	rows := alignRows(page("Ali eve gitti ."), page("Ali ev e gitti ."))

	want := []string{"Ali|Ali", "eve|ev", "|e", "gitti|gitti", ".|."}
	if got := shape(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	if rows[2].SlaveLemma != "e_l" || rows[2].MasterLemma != "" {
		t.Errorf("slave-only row should carry only slave fields: %+v", rows[2])
	}
}

func TestRowsOverSplitSlave(t *testing.T) {
	rows := alignRows(page("kitabı okudu"), page("kitab ı oku du"))

	want := []string{"kitabı|kitab", "|ı", "okudu|oku", "|du"}
	if got := shape(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v, want %v", got, want)
	}
	var tally Tally
	tally.Add(rows)
	if tally.MasterOnly != 0 || tally.Linked != 2 {
		t.Errorf("unexpected tally %+v", tally)
	}
}

func TestRowsEmptyMaster(t *testing.T) {
	rows := alignRows(nil, page("bir iki"))

	var tally Tally
	tally.Add(rows)
	if tally.SlaveOnly != 2 || tally.MasterOnly != 0 || tally.Linked != 0 {
		t.Errorf("unexpected tally %+v", tally)
	}
}

func TestRowsEmptySlave(t *testing.T) {
	rows := alignRows(page("xyz"), nil)
	if len(rows) != 1 || rows[0].Kind() != MasterOnly {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestRowsCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vocab := strings.Fields("ali eve gitti . kitabı okudu memed dağa çıktı ve baktı o gün sonra geldi")

	randomPage := func() ingest.Page {
		n := rng.Intn(25)
		var words []string
		for i := 0; i < n; i++ {
			w := vocab[rng.Intn(len(vocab))]
			if rng.Intn(6) == 0 && len([]rune(w)) > 2 {
				rs := []rune(w)
				words = append(words, string(rs[:2]), string(rs[2:]))
				continue
			}
			words = append(words, w)
		}
		return page(strings.Join(words, " "))
	}

	for iter := 0; iter < 400; iter++ {
		master, slave := randomPage(), randomPage()
		c := align.Default().Align(master.Tokens(), slave.Tokens())
		if err := c.Validate(); err != nil {
			t.Fatalf("invalid correspondence: %v", err)
		}
		rows := Rows(master, slave, c)

		var gotMaster, gotSlave []string
		for _, r := range rows {
			if r.Kind() == Empty {
				t.Fatal("empty row emitted")
			}
			if r.MasterToken != "" {
				gotMaster = append(gotMaster, r.MasterToken)
			}
			if r.SlaveToken != "" {
				gotSlave = append(gotSlave, r.SlaveToken)
			}
		}
		if !reflect.DeepEqual(gotMaster, nilIfEmpty(master.Tokens())) {
			t.Fatalf("master tokens %v not preserved in order: %v", master.Tokens(), gotMaster)
		}
		if !reflect.DeepEqual(gotSlave, nilIfEmpty(slave.Tokens())) {
			t.Fatalf("slave tokens %v not preserved in order: %v", slave.Tokens(), gotSlave)
		}
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestWriterAndReadRows(t *testing.T) {
	rows := []Row{
		{MasterToken: "Ali", MasterLemma: "ali", SlaveToken: "Ali", SlaveLemma: "Ali"},
		{SlaveToken: "e", SlaveLemma: "e"},
		{MasterToken: "xyz"},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	if err := w.WriteRows(rows[:2]); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRows(rows[2:]); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	want := Header + "\n" +
		"Ali\tali\tAli\tAli\n" +
		"\t\te\te\n" +
		"xyz\t\t\t\n"
	if buf.String() != want {
		t.Errorf("output =\n%q\nwant\n%q", buf.String(), want)
	}

	back, err := ReadRows(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, rows) {
		t.Errorf("ReadRows = %+v, want %+v", back, rows)
	}
}

func TestWriterHeaderOnEmptyOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, true).Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != Header+"\n" {
		t.Errorf("expected header only, got %q", buf.String())
	}

	buf.Reset()
	if err := NewWriter(&buf, false).Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
