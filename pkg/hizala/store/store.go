package store

import (
	"context"
	"time"

	"github.com/cognicore/hizala/pkg/hizala/emit"
)

// Store persists resumable alignment runs: the run identity and the rows of
// every page pairing already completed.
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	DeleteRun(ctx context.Context, id string) error

	// Completed pages, keyed by pairing index
	SavePage(ctx context.Context, runID string, index int, rows []emit.Row) error
	LoadPages(ctx context.Context, runID string) (map[int][]emit.Row, error)
}

// Run identifies one alignment job and the inputs it was started with
type Run struct {
	ID           string
	MasterName   string
	SlaveName    string
	MasterDigest string
	SlaveDigest  string
	Pairings     int
	CreatedAt    time.Time
}

// SameInputs reports whether two runs were started from identical streams
func (r Run) SameInputs(o Run) bool {
	return r.MasterDigest == o.MasterDigest && r.SlaveDigest == o.SlaveDigest
}
