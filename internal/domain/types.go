package domain

// OutcomeKind tags the terminal classification of one test case
type OutcomeKind string

const (
	KindTimedOut  OutcomeKind = "timed_out"
	KindCompleted OutcomeKind = "completed"
)

// Verdict is the bucket a test lands in once its result is known
type Verdict string

const (
	VerdictPass    Verdict = "pass"
	VerdictFail    Verdict = "fail"
	VerdictTimeout Verdict = "timeout"
	VerdictError   Verdict = "error"
)

// Placeholders substituted into input/output filename patterns
const (
	TaskPlaceholder = "{task}"
	TestPlaceholder = "{test}"
)
