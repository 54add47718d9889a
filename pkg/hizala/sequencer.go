package hizala

import (
	"sync"

	"github.com/cognicore/hizala/pkg/hizala/align"
	"github.com/cognicore/hizala/pkg/hizala/emit"
)

// sequencer restores pairing order: results arrive in completion order, are
// held until every earlier pairing is in, then flushed to the sink.
type sequencer struct {
	mu       sync.Mutex
	total    int
	next     int
	received int
	pending  map[int][]emit.Row
	sink     Sink
	progress func(done, total int)

	tally emit.Tally
	rules map[string]int
}

func newSequencer(total int, sink Sink, progress func(done, total int)) *sequencer {
	return &sequencer{
		total:    total,
		pending:  make(map[int][]emit.Row),
		sink:     sink,
		progress: progress,
		rules:    make(map[string]int),
	}
}

func (s *sequencer) deliver(idx int, rows []emit.Row, rules map[align.Rule]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[idx] = rows
	s.received++
	for r, n := range rules {
		s.rules[r.String()] += n
	}
	if s.progress != nil {
		s.progress(s.received, s.total)
	}

	for {
		ready, ok := s.pending[s.next]
		if !ok {
			return nil
		}
		delete(s.pending, s.next)
		if s.sink != nil {
			if err := s.sink(s.next, ready); err != nil {
				return err
			}
		}
		s.tally.Add(ready)
		s.next++
	}
}

func (s *sequencer) complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next == s.total
}
