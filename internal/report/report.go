// Package report folds per-test results into the final pass/fail/timeout
// summary and renders it.
package report

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/hochfrequenz/judgerun/internal/domain"
	"github.com/hochfrequenz/judgerun/internal/runner"
)

// Report is the aggregate of one run. Total counts discovered tests, so it
// may exceed the sum of the judged buckets when tests errored.
type Report struct {
	RunID   string
	Task    string
	Total   int
	Pass    []string
	Fail    []string
	Timeout []string
	Errored []string
	Elapsed time.Duration
}

// Aggregate folds results into a report. The fold is order independent:
// names are de-duplicated and sorted within each bucket.
func Aggregate(runID string, total int, results []runner.Result) *Report {
	byVerdict := lo.GroupBy(results, func(r runner.Result) domain.Verdict {
		return r.Verdict()
	})

	return &Report{
		RunID:   runID,
		Total:   total,
		Pass:    names(byVerdict[domain.VerdictPass]),
		Fail:    names(byVerdict[domain.VerdictFail]),
		Timeout: names(byVerdict[domain.VerdictTimeout]),
		Errored: names(byVerdict[domain.VerdictError]),
	}
}

func names(results []runner.Result) []string {
	out := lo.Uniq(lo.Map(results, func(r runner.Result, _ int) string {
		return r.Test.Name
	}))
	sort.Strings(out)
	return out
}

// Judged returns how many tests reached pass, fail or timeout
func (r *Report) Judged() int {
	return len(r.Pass) + len(r.Fail) + len(r.Timeout)
}

// AllPassed reports whether every discovered test passed
func (r *Report) AllPassed() bool {
	return len(r.Pass) == r.Total
}

// ExitCode is 0 when every test passed and 1 otherwise
func (r *Report) ExitCode() int {
	if r.AllPassed() {
		return 0
	}
	return 1
}
