package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// fakeRunner records how many runs overlap and returns canned outcomes
type fakeRunner struct {
	delay   time.Duration
	live    atomic.Int32
	maxLive atomic.Int32
	calls   atomic.Int32

	// results keyed by test name; missing names pass
	results map[string]func() (domain.Outcome, error)
}

func (f *fakeRunner) Run(ctx context.Context, tc domain.TestCase) (domain.Outcome, error) {
	f.calls.Add(1)
	n := f.live.Add(1)
	defer f.live.Add(-1)
	for {
		prev := f.maxLive.Load()
		if n <= prev || f.maxLive.CompareAndSwap(prev, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return domain.Outcome{}, &domain.ExecutionError{Test: tc.Name, Op: domain.OpWait, Err: ctx.Err()}
	}

	if fn, ok := f.results[tc.Name]; ok {
		return fn()
	}
	return domain.Outcome{Kind: domain.KindCompleted, Name: tc.Name, Correct: true}, nil
}

func makeTests(n int) []domain.TestCase {
	tests := make([]domain.TestCase, n)
	for i := range tests {
		name := fmt.Sprintf("%02d", i+1)
		tests[i] = domain.TestCase{Name: name, InputPath: name + ".in", OutputPath: name + ".out"}
	}
	return tests
}

func TestScheduler_SerialWithParallelismOne(t *testing.T) {
	fake := &fakeRunner{delay: 20 * time.Millisecond}
	sched := New(fake, 1)

	results := sched.Run(context.Background(), makeTests(5))

	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	if got := fake.maxLive.Load(); got != 1 {
		t.Errorf("got %d concurrent runs, want 1", got)
	}
	if got := sched.Pool().Peak(); got != 1 {
		t.Errorf("got pool peak %d, want 1", got)
	}
}

func TestScheduler_BoundsConcurrency(t *testing.T) {
	fake := &fakeRunner{delay: 30 * time.Millisecond}

	var mu sync.Mutex
	minAvailable := 3
	pool := NewPool(3)
	pool.SetOnSlotsChanged(func(available int) {
		mu.Lock()
		if available < minAvailable {
			minAvailable = available
		}
		mu.Unlock()
	})

	sched := New(fake, 3, WithPool(pool))
	sched.Run(context.Background(), makeTests(12))

	if got := fake.maxLive.Load(); got > 3 {
		t.Errorf("got %d concurrent runs, want at most 3", got)
	}
	if got := fake.calls.Load(); got != 12 {
		t.Errorf("got %d runs, want 12", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if minAvailable < 0 {
		t.Errorf("available slots dropped to %d", minAvailable)
	}
	if pool.InUse() != 0 {
		t.Errorf("got %d slots in use after run, want 0", pool.InUse())
	}
}

func TestScheduler_ResultsInInputOrder(t *testing.T) {
	fake := &fakeRunner{delay: time.Millisecond}
	tests := makeTests(20)

	results := New(fake, 4).Run(context.Background(), tests)

	for i, r := range results {
		if r.Test.Name != tests[i].Name {
			t.Errorf("results[%d] = %q, want %q", i, r.Test.Name, tests[i].Name)
		}
	}
}

func TestScheduler_OneEventPerTest(t *testing.T) {
	fake := &fakeRunner{delay: 5 * time.Millisecond}

	var events []Event
	sched := New(fake, 3, WithObserver(func(ev Event) {
		events = append(events, ev)
	}))
	sched.Run(context.Background(), makeTests(9))

	if len(events) != 9 {
		t.Fatalf("got %d events, want 9", len(events))
	}

	seen := map[string]bool{}
	for i, ev := range events {
		if seen[ev.Result.Test.Name] {
			t.Errorf("duplicate event for %s", ev.Result.Test.Name)
		}
		seen[ev.Result.Test.Name] = true
		if ev.Progress.Finished != i+1 {
			t.Errorf("event %d: got finished=%d, want %d", i, ev.Progress.Finished, i+1)
		}
		if ev.Progress.Total != 9 {
			t.Errorf("event %d: got total=%d, want 9", i, ev.Progress.Total)
		}
	}
	if last := events[len(events)-1].Progress; !last.Done() || last.Passed != 9 {
		t.Errorf("final snapshot %+v", last)
	}
}

func TestScheduler_ErrorsDoNotAbortSiblings(t *testing.T) {
	boom := errors.New("boom")
	fake := &fakeRunner{
		delay: time.Millisecond,
		results: map[string]func() (domain.Outcome, error){
			"02": func() (domain.Outcome, error) {
				return domain.Outcome{}, &domain.ExecutionError{Test: "02", Op: domain.OpSpawn, Err: boom}
			},
			"03": func() (domain.Outcome, error) { return domain.TimedOut("03"), nil },
			"04": func() (domain.Outcome, error) {
				return domain.Outcome{Kind: domain.KindCompleted, Name: "04"}, nil
			},
		},
	}

	var last Snapshot
	results := New(fake, 2, WithObserver(func(ev Event) { last = ev.Progress })).
		Run(context.Background(), makeTests(5))

	want := map[string]domain.Verdict{
		"01": domain.VerdictPass,
		"02": domain.VerdictError,
		"03": domain.VerdictTimeout,
		"04": domain.VerdictFail,
		"05": domain.VerdictPass,
	}
	for _, r := range results {
		if got := r.Verdict(); got != want[r.Test.Name] {
			t.Errorf("test %s: got verdict %q, want %q", r.Test.Name, got, want[r.Test.Name])
		}
	}
	if !errors.Is(results[1].Err, boom) {
		t.Errorf("got err %v, want boom", results[1].Err)
	}
	if last.NotPassed() != 3 {
		t.Errorf("got %d not passed, want 3", last.NotPassed())
	}
}

func TestScheduler_Cancelled(t *testing.T) {
	fake := &fakeRunner{delay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	done := make(chan []Result)
	go func() {
		done <- New(fake, 2).Run(ctx, makeTests(6))
	}()

	select {
	case results := <-done:
		for _, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("test %s: got %v, want context.Canceled", r.Test.Name, r.Err)
			}
			if r.Verdict() != domain.VerdictError {
				t.Errorf("test %s: got verdict %q, want error", r.Test.Name, r.Verdict())
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestScheduler_RecoversPanics(t *testing.T) {
	fake := &fakeRunner{
		results: map[string]func() (domain.Outcome, error){
			"01": func() (domain.Outcome, error) { panic("bad runner") },
		},
	}
	sched := New(fake, 1)

	results := sched.Run(context.Background(), makeTests(2))

	if results[0].Verdict() != domain.VerdictError {
		t.Errorf("got verdict %q, want error", results[0].Verdict())
	}
	if results[1].Verdict() != domain.VerdictPass {
		t.Errorf("got verdict %q, want pass", results[1].Verdict())
	}
	if sched.Pool().InUse() != 0 {
		t.Error("slot leaked after panic")
	}
}

func TestScheduler_NoTests(t *testing.T) {
	results := New(&fakeRunner{}, 5).Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}
