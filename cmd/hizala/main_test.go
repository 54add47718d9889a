package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/cognicore/hizala/pkg/hizala"
	"github.com/cognicore/hizala/pkg/hizala/emit"
)

func writeInput(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readOutput(t *testing.T, path string) []emit.Row {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	rows, err := emit.ReadRows(f)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return rows
}

func fixtures(t *testing.T) (dir, master, slave string) {
	dir = t.TempDir()
	master = writeInput(t, dir, "master.tsv",
		"Ali\tali", "eve\tev", "gitti\tgit", ".\t.", "|\t|",
		"kitabı\tkitap", "okudu\toku")
	slave = writeInput(t, dir, "slave.tsv",
		"Ali\tali", "ev\tev", "e\te", "gitti\tgit", ".\t.", "|\t|",
		"kitab\tkitap", "ı\tı", "oku\toku", "du\tdu")
	return dir, master, slave
}

// TestRunWritesTable tests an end-to-end run into a TSV file
func TestRunWritesTable(t *testing.T) {
	dir, master, slave := fixtures(t)
	out := filepath.Join(dir, "out.tsv")

	sum, err := run(context.Background(), options{master: master, slave: slave, out: out, workers: 2, quiet: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	rows := readOutput(t, out)
	if len(rows) != 9 {
		t.Fatalf("expected 9 rows, got %d: %+v", len(rows), rows)
	}
	if rows[1].MasterToken != "eve" || rows[1].SlaveToken != "ev" {
		t.Errorf("unexpected row 1: %+v", rows[1])
	}
	if rows[2].MasterToken != "" || rows[2].SlaveToken != "e" {
		t.Errorf("expected slave-only row for split piece, got %+v", rows[2])
	}
	if sum.PairedPages != 2 || sum.Rows.Rows != 9 || sum.Rows.MasterOnly != 0 {
		t.Errorf("unexpected summary: %+v", sum)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), emit.Header+"\n") {
		t.Error("expected header line")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

// TestRunNoHeader tests that --no-header omits the header line
func TestRunNoHeader(t *testing.T) {
	dir, master, slave := fixtures(t)
	out := filepath.Join(dir, "out.tsv")

	if _, err := run(context.Background(), options{master: master, slave: slave, out: out, noHeader: true, quiet: true}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	data, _ := os.ReadFile(out)
	if strings.HasPrefix(string(data), emit.Header) {
		t.Error("header should be omitted")
	}
}

// TestRunRequiresFlags tests validation of required flags
func TestRunRequiresFlags(t *testing.T) {
	dir, master, slave := fixtures(t)
	cases := []options{
		{slave: slave, out: filepath.Join(dir, "o.tsv")},
		{master: master, out: filepath.Join(dir, "o.tsv")},
		{master: master, slave: slave},
		{master: master, slave: slave, out: filepath.Join(dir, "o.tsv"), resume: "01ARZ3NDEKTSV4RRFFQ69G5FAV"},
	}
	for i, opts := range cases {
		if _, err := run(context.Background(), opts); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

// TestRunMissingInput tests that an unreadable input fails without output
func TestRunMissingInput(t *testing.T) {
	dir, master, _ := fixtures(t)
	out := filepath.Join(dir, "out.tsv")

	_, err := run(context.Background(), options{master: master, slave: filepath.Join(dir, "missing.tsv"), out: out})
	if err == nil {
		t.Fatal("expected error for missing slave file")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output should not exist after a failed run")
	}
}

// TestRunCheckpointResume tests that a completed run can be replayed from the
// checkpoint database
func TestRunCheckpointResume(t *testing.T) {
	dir, master, slave := fixtures(t)
	db := filepath.Join(dir, "checkpoint.db")
	out1 := filepath.Join(dir, "first.tsv")
	out2 := filepath.Join(dir, "second.tsv")

	sum, err := run(context.Background(), options{master: master, slave: slave, out: out1, dbPath: db, quiet: true})
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if sum.RunID == "" {
		t.Fatal("expected a run ID")
	}

	sum2, err := run(context.Background(), options{master: master, slave: slave, out: out2, dbPath: db, resume: sum.RunID, quiet: true})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if sum2.ResumedPages != 2 {
		t.Errorf("expected 2 resumed pairings, got %d", sum2.ResumedPages)
	}

	first, _ := os.ReadFile(out1)
	second, _ := os.ReadFile(out2)
	if !bytes.Equal(first, second) {
		t.Error("resumed output differs from the original run")
	}
}

// TestRunConfigFile tests loading settings from YAML
func TestRunConfigFile(t *testing.T) {
	dir, _, _ := fixtures(t)
	master := writeInput(t, dir, "m.tsv", "a\ta", "#\t#", "b\tb")
	slave := writeInput(t, dir, "s.tsv", "a\ta", "#\t#", "b\tb")
	cfg := writeInput(t, dir, "hizala.yaml", "page_break: \"#\"", "workers: 1", "output:", "  header: false")
	out := filepath.Join(dir, "out.tsv")

	sum, err := run(context.Background(), options{master: master, slave: slave, out: out, configPath: cfg, quiet: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if sum.PairedPages != 2 {
		t.Errorf("expected 2 paired pages with custom marker, got %d", sum.PairedPages)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "a\ta\ta\ta\nb\tb\tb\tb\n" {
		t.Errorf("unexpected output %q", data)
	}
}

// TestWriteOutputDiscardsOnError tests that a failed writer leaves nothing behind
func TestWriteOutputDiscardsOnError(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.tsv")
	boom := errors.New("boom")

	err := writeOutput(out, func(w io.Writer) error {
		io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printSummary(&buf, hizala.Summary{
		RunID:          "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		MasterPages:    2,
		SlavePages:     3,
		PairedPages:    2,
		SlaveOnlyPages: 1,
		Rows:           emit.Tally{Rows: 5, Linked: 4, SlaveOnly: 1},
		Rules:          map[string]int{"exact": 3, "slave-split": 1},
	})
	got := buf.String()
	for _, want := range []string{"01ARZ3NDEKTSV4RRFFQ69G5FAV", "unpaired: master=0 slave=1", "exact=3 slave-split=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
