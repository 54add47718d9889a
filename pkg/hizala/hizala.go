package hizala

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/hizala/pkg/hizala/align"
	"github.com/cognicore/hizala/pkg/hizala/config"
	"github.com/cognicore/hizala/pkg/hizala/emit"
	"github.com/cognicore/hizala/pkg/hizala/ingest"
	"github.com/cognicore/hizala/pkg/hizala/internalerr"
	"github.com/cognicore/hizala/pkg/hizala/pagematch"
	"github.com/cognicore/hizala/pkg/hizala/similarity"
	"github.com/cognicore/hizala/pkg/hizala/store"
)

// Engine is the alignment facade: it segments both streams into pages, pairs
// the pages, aligns every pairing on a bounded worker pool and hands the rows
// to a sink in pairing order.
type Engine struct {
	pageBreak string
	matcher   *pagematch.Matcher
	aligner   *align.Aligner
	workers   int
	store     store.Store
	logger    *log.Logger
	progress  func(done, total int)

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Options configures an Engine. Nil components fall back to the defaults.
type Options struct {
	PageBreak   string
	PageMatcher *pagematch.Matcher
	Aligner     *align.Aligner
	Workers     int
	// Store enables checkpointed, resumable runs.
	Store  store.Store
	Logger *log.Logger
	// Progress is called after every completed pairing.
	Progress func(done, total int)
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	e := &Engine{
		pageBreak: opts.PageBreak,
		matcher:   opts.PageMatcher,
		aligner:   opts.Aligner,
		workers:   config.EffectiveWorkers(opts.Workers),
		store:     opts.Store,
		logger:    opts.Logger,
		progress:  opts.Progress,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
	if e.pageBreak == "" {
		e.pageBreak = ingest.DefaultPageBreak
	}
	if e.matcher == nil {
		e.matcher = pagematch.New(pagematch.DefaultConfig(), nil, similarity.Folder{})
	}
	if e.aligner == nil {
		e.aligner = align.Default()
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard, "", 0)
	}
	return e
}

// NewFromConfig builds an Engine from a configuration.
func NewFromConfig(cfg config.Config, st store.Store, logger *log.Logger) (*Engine, error) {
	comp, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return New(Options{
		PageBreak:   comp.PageBreak,
		PageMatcher: comp.PageMatcher,
		Aligner:     comp.Aligner,
		Workers:     comp.Workers,
		Store:       st,
		Logger:      logger,
	}), nil
}

// SetProgress replaces the progress callback.
func (e *Engine) SetProgress(fn func(done, total int)) {
	e.progress = fn
}

// Close cleanly shuts down the engine and its checkpoint store
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Input is one token/lemma stream.
type Input struct {
	Name    string
	Entries []ingest.Entry
}

// Job describes one alignment run.
type Job struct {
	// RunID resumes a checkpointed run; empty starts a new one.
	RunID  string
	Master Input
	Slave  Input
}

// Summary reports what a run produced.
type Summary struct {
	RunID string

	MasterPages     int
	SlavePages      int
	PairedPages     int
	MasterOnlyPages int
	SlaveOnlyPages  int
	ResumedPages    int

	Rows emit.Tally
	// Rules counts links per rule for pairings aligned in this invocation.
	Rules   map[string]int
	Elapsed time.Duration
}

// Sink receives the rows of each pairing, called once per pairing in
// pairing order and never concurrently.
type Sink func(index int, rows []emit.Row) error

// Align aligns two streams in memory and returns all rows. It never uses the
// checkpoint store.
func (e *Engine) Align(ctx context.Context, master, slave []ingest.Entry) ([]emit.Row, Summary, error) {
	var rows []emit.Row
	sink := func(_ int, page []emit.Row) error {
		rows = append(rows, page...)
		return nil
	}
	sum, err := e.run(ctx, Job{Master: Input{Entries: master}, Slave: Input{Entries: slave}}, sink, false)
	if err != nil {
		return nil, sum, err
	}
	return rows, sum, nil
}

// Run aligns a job and streams rows to sink. With a checkpoint store every
// completed pairing is persisted and Job.RunID resumes an earlier run.
func (e *Engine) Run(ctx context.Context, job Job, sink Sink) (Summary, error) {
	return e.run(ctx, job, sink, e.store != nil)
}

func (e *Engine) run(ctx context.Context, job Job, sink Sink, checkpoint bool) (Summary, error) {
	start := time.Now()
	var sum Summary

	masterPages := ingest.SplitPages(job.Master.Entries, e.pageBreak)
	slavePages := ingest.SplitPages(job.Slave.Entries, e.pageBreak)
	pairs := e.matcher.Match(masterPages, slavePages)

	sum.MasterPages, sum.SlavePages = len(masterPages), len(slavePages)
	for _, p := range pairs {
		switch p.Kind() {
		case pagematch.Both:
			sum.PairedPages++
		case pagematch.MasterOnly:
			sum.MasterOnlyPages++
		case pagematch.SlaveOnly:
			sum.SlaveOnlyPages++
		}
	}
	e.logger.Printf("Pages: master=%d slave=%d paired=%d master-only=%d slave-only=%d",
		sum.MasterPages, sum.SlavePages, sum.PairedPages, sum.MasterOnlyPages, sum.SlaveOnlyPages)

	var done map[int][]emit.Row
	if checkpoint {
		runID, pages, err := e.prepareRun(ctx, job, len(pairs))
		if err != nil {
			return sum, err
		}
		sum.RunID, done = runID, pages
	} else if job.RunID != "" {
		return sum, fmt.Errorf("%w: resuming run %s requires a checkpoint store", internalerr.ErrInvalidInput, job.RunID)
	}

	seq := newSequencer(len(pairs), sink, e.progress)
	for idx, rows := range done {
		if idx < 0 || idx >= len(pairs) {
			continue
		}
		sum.ResumedPages++
		if err := seq.deliver(idx, rows, nil); err != nil {
			return sum, err
		}
	}
	if sum.ResumedPages > 0 {
		e.logger.Printf("Resuming run %s: %d/%d pairings already completed", sum.RunID, sum.ResumedPages, len(pairs))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for idx, p := range pairs {
		if _, ok := done[idx]; ok {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows, rules, err := e.alignPairing(idx, p, masterPages, slavePages)
			if err != nil {
				return err
			}
			if checkpoint {
				if err := e.store.SavePage(gctx, sum.RunID, idx, rows); err != nil {
					return fmt.Errorf("checkpoint pairing %d: %w", idx, err)
				}
			}
			return seq.deliver(idx, rows, rules)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return sum, err
	}
	if !seq.complete() {
		return sum, errors.New("alignment finished with undelivered pairings")
	}

	sum.Rows = seq.tally
	sum.Rules = seq.rules
	sum.Elapsed = time.Since(start)
	return sum, nil
}

// alignPairing aligns one pairing. A missing side is an empty page.
func (e *Engine) alignPairing(idx int, p pagematch.Pairing, masterPages, slavePages []ingest.Page) ([]emit.Row, map[align.Rule]int, error) {
	var master, slave ingest.Page
	if p.Master != pagematch.None {
		master = masterPages[p.Master]
	}
	if p.Slave != pagematch.None {
		slave = slavePages[p.Slave]
	}

	c := e.aligner.Align(master.Tokens(), slave.Tokens())
	if err := c.Validate(); err != nil {
		return nil, nil, fmt.Errorf("pairing %d (master %d, slave %d): %w", idx, p.Master, p.Slave, err)
	}
	return emit.Rows(master, slave, c), c.RuleCounts(), nil
}

// prepareRun registers a new checkpointed run or loads the completed pages of
// the run being resumed.
func (e *Engine) prepareRun(ctx context.Context, job Job, pairings int) (string, map[int][]emit.Row, error) {
	run := store.Run{
		MasterName:   job.Master.Name,
		SlaveName:    job.Slave.Name,
		MasterDigest: ingest.Digest(job.Master.Entries),
		SlaveDigest:  ingest.Digest(job.Slave.Entries),
		Pairings:     pairings,
		CreatedAt:    time.Now(),
	}

	if job.RunID == "" {
		run.ID = e.newRunID()
		if err := e.store.CreateRun(ctx, run); err != nil {
			return "", nil, fmt.Errorf("create run: %w", err)
		}
		e.logger.Printf("Started run %s", run.ID)
		return run.ID, nil, nil
	}

	existing, found, err := e.store.GetRun(ctx, job.RunID)
	if err != nil {
		return "", nil, fmt.Errorf("load run %s: %w", job.RunID, err)
	}
	if !found {
		return "", nil, fmt.Errorf("run %s: %w", job.RunID, internalerr.ErrNotFound)
	}
	if !existing.SameInputs(run) || existing.Pairings != pairings {
		return "", nil, fmt.Errorf("run %s: %w", job.RunID, internalerr.ErrRunMismatch)
	}
	pages, err := e.store.LoadPages(ctx, job.RunID)
	if err != nil {
		return "", nil, fmt.Errorf("load pages of run %s: %w", job.RunID, err)
	}
	return job.RunID, pages, nil
}

func (e *Engine) newRunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}
