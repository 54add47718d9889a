package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/cognicore/hizala/pkg/hizala"
	"github.com/cognicore/hizala/pkg/hizala/config"
	"github.com/cognicore/hizala/pkg/hizala/emit"
	"github.com/cognicore/hizala/pkg/hizala/ingest"
	"github.com/cognicore/hizala/pkg/hizala/store"
	"github.com/cognicore/hizala/pkg/hizala/store/sqlite"
)

type options struct {
	master     string
	slave      string
	out        string
	configPath string
	dbPath     string
	resume     string
	workers    int
	noHeader   bool
	quiet      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.master, "master", "", "Master token/lemma file (required)")
	flag.StringVar(&opts.slave, "slave", "", "Slave token/lemma file (required)")
	flag.StringVar(&opts.out, "out", "", "Output TSV path, - for stdout (required)")
	flag.StringVar(&opts.configPath, "config", "", "YAML configuration file (optional)")
	flag.StringVar(&opts.dbPath, "db", "", "Checkpoint database path (enables resumable runs)")
	flag.StringVar(&opts.resume, "resume", "", "Run ID to resume (requires --db)")
	flag.IntVar(&opts.workers, "workers", 0, "Parallel page workers (0 = CPU count - 1)")
	flag.BoolVar(&opts.noHeader, "no-header", false, "Omit the TSV header line")
	flag.BoolVar(&opts.quiet, "quiet", false, "Suppress progress logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := run(ctx, opts)
	if err != nil {
		if sum.RunID != "" {
			log.Printf("Run %s can be resumed with --resume %s", sum.RunID, sum.RunID)
		}
		log.Fatal(err)
	}

	color.NoColor = !isTerminal(os.Stderr)
	printSummary(os.Stderr, sum)
}

func run(ctx context.Context, opts options) (hizala.Summary, error) {
	var sum hizala.Summary
	if opts.master == "" || opts.slave == "" {
		return sum, errors.New("--master and --slave required")
	}
	if opts.out == "" {
		return sum, errors.New("--out required")
	}

	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return sum, err
		}
		cfg = loaded
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.noHeader {
		off := false
		cfg.Output.Header = &off
	}
	if opts.dbPath != "" {
		cfg.Checkpoint.DB = opts.dbPath
	}
	if opts.resume != "" && cfg.Checkpoint.DB == "" {
		return sum, errors.New("--resume requires --db")
	}

	master, err := ingest.ReadFile(opts.master)
	if err != nil {
		return sum, fmt.Errorf("read master: %w", err)
	}
	slave, err := ingest.ReadFile(opts.slave)
	if err != nil {
		return sum, fmt.Errorf("read slave: %w", err)
	}
	log.Printf("Loaded %d master and %d slave entries", len(master), len(slave))

	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return sum, err
	}
	defer engine.Close()

	if !opts.quiet {
		engine.SetProgress(func(done, total int) {
			if done%100 == 0 || done == total {
				log.Printf("Aligned %d/%d page pairings", done, total)
			}
		})
	}

	job := hizala.Job{
		RunID:  opts.resume,
		Master: hizala.Input{Name: filepath.Base(opts.master), Entries: master},
		Slave:  hizala.Input{Name: filepath.Base(opts.slave), Entries: slave},
	}

	err = writeOutput(opts.out, func(w io.Writer) error {
		tw := emit.NewWriter(w, cfg.HeaderEnabled())
		var runErr error
		sum, runErr = engine.Run(ctx, job, func(_ int, rows []emit.Row) error {
			return tw.WriteRows(rows)
		})
		if runErr != nil {
			return runErr
		}
		return tw.Flush()
	})
	return sum, err
}

// buildEngine opens the checkpoint store when configured and assembles the
// engine. Closing the engine closes the store.
func buildEngine(ctx context.Context, cfg config.Config) (*hizala.Engine, error) {
	var st store.Store
	if cfg.Checkpoint.DB != "" {
		var err error
		st, err = sqlite.OpenSQLite(ctx, cfg.Checkpoint.DB)
		if err != nil {
			return nil, fmt.Errorf("open checkpoint database: %w", err)
		}
	}

	engine, err := hizala.NewFromConfig(cfg, st, log.Default())
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, err
	}
	return engine, nil
}

// writeOutput writes to a temp file next to path and renames it into place
// only when fn succeeds, so a failed run never leaves a truncated table.
func writeOutput(path string, fn func(io.Writer) error) error {
	if path == "-" {
		return fn(os.Stdout)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func printSummary(w io.Writer, sum hizala.Summary) {
	title := color.New(color.FgGreen, color.Bold)
	label := color.New(color.FgCyan)
	warn := color.New(color.FgYellow)

	title.Fprintln(w, "✓ Alignment complete")
	if sum.RunID != "" {
		label.Fprint(w, "  run:      ")
		fmt.Fprintln(w, sum.RunID)
	}
	label.Fprint(w, "  pages:    ")
	fmt.Fprintf(w, "master=%d slave=%d paired=%d\n", sum.MasterPages, sum.SlavePages, sum.PairedPages)
	if sum.MasterOnlyPages > 0 || sum.SlaveOnlyPages > 0 {
		warn.Fprintf(w, "  unpaired: master=%d slave=%d\n", sum.MasterOnlyPages, sum.SlaveOnlyPages)
	}
	if sum.ResumedPages > 0 {
		label.Fprint(w, "  resumed:  ")
		fmt.Fprintf(w, "%d pairings\n", sum.ResumedPages)
	}
	label.Fprint(w, "  rows:     ")
	fmt.Fprintf(w, "%d (linked=%d master-only=%d slave-only=%d)\n",
		sum.Rows.Rows, sum.Rows.Linked, sum.Rows.MasterOnly, sum.Rows.SlaveOnly)
	if len(sum.Rules) > 0 {
		names := make([]string, 0, len(sum.Rules))
		for name := range sum.Rules {
			names = append(names, name)
		}
		sort.Strings(names)
		label.Fprint(w, "  rules:    ")
		for i, name := range names {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%s=%d", name, sum.Rules[name])
		}
		fmt.Fprintln(w)
	}
	label.Fprint(w, "  elapsed:  ")
	fmt.Fprintln(w, sum.Elapsed.Round(time.Millisecond))
}
