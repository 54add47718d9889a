package align

// Params bounds every lookahead the aligner performs.
type Params struct {
	// SplitMax is the longest run tried when one side split a word the
	// other kept whole (forward and backward passes).
	SplitMax int
	// MaxSkip is the furthest the forward pass skips ahead on the slave side.
	MaxSkip int
	// SkipSplitMax is the longest slave run tried at a skipped position.
	SkipSplitMax int
	// ConfirmMax caps the confirmations a skip needs; a skip of n needs min(n, ConfirmMax).
	ConfirmMax int
	// ConfirmSplitMax is the longest slave run accepted as one confirmation step.
	ConfirmSplitMax int
	// BackwardSkip is the furthest the backward pass skips.
	BackwardSkip int
}

// DefaultParams returns the reference bounds.
func DefaultParams() Params {
	return Params{
		SplitMax:        4,
		MaxSkip:         5,
		SkipSplitMax:    3,
		ConfirmMax:      2,
		ConfirmSplitMax: 3,
		BackwardSkip:    3,
	}
}
