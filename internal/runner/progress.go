package runner

import (
	"sync"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// Progress counts terminal tests. One instance is shared by every task of
// a run and mutated only through Finish.
type Progress struct {
	mu   sync.Mutex
	snap Snapshot
}

// Snapshot is a point-in-time copy of the progress counters
type Snapshot struct {
	Total    int
	Finished int
	Passed   int
	Failed   int
	TimedOut int
	Errored  int
}

// NewProgress creates a counter for a run of total tests
func NewProgress(total int) *Progress {
	return &Progress{snap: Snapshot{Total: total}}
}

// Finish records one terminal test and returns the counters after it
func (p *Progress) Finish(v domain.Verdict) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.snap.Finished++
	switch v {
	case domain.VerdictPass:
		p.snap.Passed++
	case domain.VerdictFail:
		p.snap.Failed++
	case domain.VerdictTimeout:
		p.snap.TimedOut++
	default:
		p.snap.Errored++
	}
	return p.snap
}

// Snapshot returns the current counters
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// NotPassed counts every finished test that did not pass
func (s Snapshot) NotPassed() int {
	return s.Failed + s.TimedOut + s.Errored
}

// Done reports whether every test has finished
func (s Snapshot) Done() bool {
	return s.Finished >= s.Total
}
