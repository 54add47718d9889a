package config

import (
	"fmt"
	"runtime"

	"github.com/cognicore/hizala/pkg/hizala/align"
	"github.com/cognicore/hizala/pkg/hizala/ingest"
	"github.com/cognicore/hizala/pkg/hizala/internalerr"
	"github.com/cognicore/hizala/pkg/hizala/pagematch"
	"github.com/cognicore/hizala/pkg/hizala/similarity"
)

// Components holds the engine parts built from a configuration
type Components struct {
	PageBreak   string
	Workers     int
	PageMatcher *pagematch.Matcher
	Aligner     *align.Aligner
}

// Build validates the configuration and constructs the engine components
func (c Config) Build() (*Components, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	folder, err := similarity.NewFolder(c.CaseLocale)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	punct := ingest.NewPunctuation(c.Punctuation)

	matcher := pagematch.New(pagematch.Config{
		SignatureSize: c.PageMatch.SignatureSize,
		Window:        c.PageMatch.Window,
		MinScore:      c.PageMatch.MinScore,
		PrefixLength:  c.PageMatch.PrefixLength,
	}, punct, folder)

	aligner := align.New(align.Params{
		SplitMax:        c.Align.SplitMax,
		MaxSkip:         c.Align.MaxSkip,
		SkipSplitMax:    c.Align.SkipSplitMax,
		ConfirmMax:      c.Align.ConfirmMax,
		ConfirmSplitMax: c.Align.ConfirmSplitMax,
		BackwardSkip:    c.Align.BackwardSkip,
	}, folder, similarity.Matcher{
		MinLength: c.Fuzzy.MinLength,
		MinPrefix: c.Fuzzy.MinPrefix,
		MinRatio:  c.Fuzzy.MinRatio,
	})

	return &Components{
		PageBreak:   c.PageBreak,
		Workers:     EffectiveWorkers(c.Workers),
		PageMatcher: matcher,
		Aligner:     aligner,
	}, nil
}

// EffectiveWorkers resolves 0 to one less than the CPU count, minimum 1
func EffectiveWorkers(n int) int {
	if n > 0 {
		return n
	}
	return max(1, runtime.NumCPU()-1)
}
