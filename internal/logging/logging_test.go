package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hochfrequenz/judgerun/internal/domain"
	"github.com/hochfrequenz/judgerun/internal/runner"
)

func TestFormatter_Plain(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf, false)

	entry := &logrus.Entry{
		Time:    time.Date(2026, 10, 14, 9, 5, 3, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "Loaded 3 tests",
		Data:    logrus.Fields{"task": "sum", "parallel": 5},
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatal(err)
	}

	want := "[14-10-2026 09:05:03 INFO] Loaded 3 tests parallel=5 task=sum\n"
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		verbose bool
		quiet   bool
		want    logrus.Level
	}{
		{"default", "", false, false, logrus.InfoLevel},
		{"verbose", "", true, false, logrus.DebugLevel},
		{"quiet", "", false, true, logrus.WarnLevel},
		{"env wins", "error", true, false, logrus.ErrorLevel},
		{"invalid env ignored", "loud", true, false, logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLevel, tt.env)
			if got := Level(tt.verbose, tt.quiet); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func newTestLog(level logrus.Level) (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(level)
	log.SetFormatter(NewFormatter(&buf, false))
	return log, &buf
}

func TestTestLogger(t *testing.T) {
	tests := []struct {
		name   string
		result runner.Result
		want   []string
	}{
		{
			name: "pass",
			result: runner.Result{
				Test:    domain.TestCase{Name: "01"},
				Outcome: domain.Outcome{Kind: domain.KindCompleted, Name: "01", Correct: true, Elapsed: 20 * time.Millisecond},
			},
			want: []string{"INFO] ✔ Test 01 - PASS (0.02 s)"},
		},
		{
			name: "fail",
			result: runner.Result{
				Test: domain.TestCase{Name: "02"},
				Outcome: domain.Outcome{
					Kind: domain.KindCompleted, Name: "02",
					Stdout: []byte("6\n"), Expected: []byte(" 5\n"),
					Stderr: []byte("warning\n"), Exit: domain.ExitInfo{Code: 3},
				},
			},
			want: []string{
				"ERROR] ✖ Test 02 - FAIL (0.00 s)\nExpected: 5\nGot: 6\n",
				"DEBUG] Test 02: solution terminated with exit code 3",
				"DEBUG] Test 02 stderr:\nwarning\n",
			},
		},
		{
			name:   "timeout",
			result: runner.Result{Test: domain.TestCase{Name: "03"}, Outcome: domain.TimedOut("03")},
			want:   []string{"ERROR] ✖ Test 03 - TIMED OUT!"},
		},
		{
			name: "error",
			result: runner.Result{
				Test: domain.TestCase{Name: "04"},
				Err:  &domain.ExecutionError{Test: "04", Op: domain.OpReadExpected, Err: errors.New("no such file")},
			},
			want: []string{"ERROR] ✖ Test 04 - ERROR\n", "caused by: no such file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newTestLog(logrus.DebugLevel)
			TestLogger(log)(runner.Event{Result: tt.result})

			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestTestLogger_PassHiddenWhenQuiet(t *testing.T) {
	log, buf := newTestLog(logrus.WarnLevel)
	TestLogger(log)(runner.Event{Result: runner.Result{
		Test:    domain.TestCase{Name: "01"},
		Outcome: domain.Outcome{Kind: domain.KindCompleted, Name: "01", Correct: true},
	}})

	if buf.Len() != 0 {
		t.Errorf("got %q, want no output", buf.String())
	}
}

func TestFormatter_WarnLevelName(t *testing.T) {
	var buf bytes.Buffer
	out, err := NewFormatter(&buf, false).Format(&logrus.Entry{
		Time:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Skipping file",
		Data:    logrus.Fields{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := "[02-01-2026 03:04:05 WARN] Skipping file\n"; string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}
