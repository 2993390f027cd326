package domain

import (
	"fmt"
	"time"
)

// ExitInfo describes how a completed child process terminated
type ExitInfo struct {
	Code   int    `json:"code"`
	Signal string `json:"signal,omitempty"`
}

// Success reports whether the process exited with status 0
func (e ExitInfo) Success() bool {
	return e.Code == 0 && e.Signal == ""
}

func (e ExitInfo) String() string {
	if e.Signal != "" {
		return fmt.Sprintf("signal %s", e.Signal)
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Outcome is the terminal result of running one test case.
// Kind selects which fields are meaningful: a timed out outcome only
// carries Name.
type Outcome struct {
	Kind OutcomeKind
	Name string

	// Completed only
	Elapsed  time.Duration
	Correct  bool
	Stdout   []byte
	Stdin    []byte
	Expected []byte
	Stderr   []byte
	Exit     ExitInfo
}

// TimedOut builds the outcome for a test whose child outlived its timeout
func TimedOut(name string) Outcome {
	return Outcome{Kind: KindTimedOut, Name: name}
}

// IsTimedOut returns true for timed out outcomes
func (o Outcome) IsTimedOut() bool {
	return o.Kind == KindTimedOut
}

// IsCompleted returns true when the child terminated on its own
func (o Outcome) IsCompleted() bool {
	return o.Kind == KindCompleted
}

// Verdict classifies the outcome into pass, fail or timeout
func (o Outcome) Verdict() Verdict {
	switch {
	case o.Kind == KindTimedOut:
		return VerdictTimeout
	case o.Correct:
		return VerdictPass
	default:
		return VerdictFail
	}
}
