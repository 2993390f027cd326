// Package runner fans test cases out to an executor with a fixed upper
// bound on simultaneously running child processes.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// TestRunner runs one test case to an outcome or an execution error
type TestRunner interface {
	Run(ctx context.Context, tc domain.TestCase) (domain.Outcome, error)
}

// Result is what one task produced: either an outcome or an error
type Result struct {
	Test    domain.TestCase
	Outcome domain.Outcome
	Err     error
}

// Verdict classifies the result; execution errors get their own bucket
func (r Result) Verdict() domain.Verdict {
	if r.Err != nil {
		return domain.VerdictError
	}
	return r.Outcome.Verdict()
}

// Event is emitted once per test when its result is final
type Event struct {
	Result   Result
	Progress Snapshot
	// Running is the number of child processes alive after this test released its slot
	Running int
}

// Observer receives events. Calls are serialized, so observers need no
// locking of their own.
type Observer func(Event)

// Scheduler runs test suites through a TestRunner
type Scheduler struct {
	runner    TestRunner
	pool      *Pool
	observers []Observer
	log       logrus.FieldLogger
	notifyMu  sync.Mutex
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithObserver registers an observer for per-test events
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observers = append(s.observers, o)
	}
}

// WithPool replaces the admission pool, e.g. to share it or to watch its
// slot changes
func WithPool(p *Pool) Option {
	return func(s *Scheduler) {
		s.pool = p
	}
}

// WithLogger sets the logger used for scheduling diagnostics
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scheduler) {
		s.log = l
	}
}

// New creates a scheduler admitting at most parallel concurrent tests
func New(r TestRunner, parallel int, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner: r,
		pool:   NewPool(parallel),
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "scheduler")
	return s
}

// Pool returns the admission pool
func (s *Scheduler) Pool() *Pool {
	return s.pool
}

// Run executes every test and returns one result per test, in the order
// of tests. A goroutine is started for each test up front; only those
// holding a pool slot spawn a process. Cancelling ctx makes pending and
// running tests finish with an execution error.
func (s *Scheduler) Run(ctx context.Context, tests []domain.TestCase) []Result {
	progress := NewProgress(len(tests))
	results := make([]Result, len(tests))

	s.log.Debugf("scheduling %d tests with %d slots", len(tests), s.pool.MaxJobs())
	start := time.Now()

	var g errgroup.Group
	for i, tc := range tests {
		g.Go(func() error {
			results[i] = s.runOne(ctx, tc, progress)
			return nil
		})
	}
	// Tasks never return errors; per-test failures live in the results
	_ = g.Wait()

	s.log.Debugf("all %d tests finished in %s", len(tests), time.Since(start).Round(time.Millisecond))
	return results
}

func (s *Scheduler) runOne(ctx context.Context, tc domain.TestCase, progress *Progress) Result {
	result := Result{Test: tc}

	if err := s.pool.Acquire(ctx); err != nil {
		result.Err = &domain.ExecutionError{Test: tc.Name, Op: domain.OpAdmit, Err: err}
	} else {
		result.Outcome, result.Err = s.execute(ctx, tc)
		s.pool.Release()
	}

	s.finish(result, progress)
	return result
}

// execute runs the test and turns a panic in the runner into an error so
// the slot is always released
func (s *Scheduler) execute(ctx context.Context, tc domain.TestCase) (outcome domain.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("test", tc.Name).Errorf("runner panicked: %v", r)
			err = &domain.ExecutionError{Test: tc.Name, Op: domain.OpWait, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return s.runner.Run(ctx, tc)
}

// finish counts the result and notifies observers under one lock, so
// observers see snapshots in increasing order
func (s *Scheduler) finish(result Result, progress *Progress) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	ev := Event{
		Result:   result,
		Progress: progress.Finish(result.Verdict()),
		Running:  s.pool.InUse(),
	}
	for _, o := range s.observers {
		o(ev)
	}
}
