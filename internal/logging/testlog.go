package logging

import (
	"bytes"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/hochfrequenz/judgerun/internal/domain"
	"github.com/hochfrequenz/judgerun/internal/executor"
	"github.com/hochfrequenz/judgerun/internal/runner"
)

// TestLogger returns an observer that logs one line per finished test
func TestLogger(log logrus.FieldLogger) runner.Observer {
	return func(ev runner.Event) {
		res := ev.Result
		name := res.Test.Name

		if res.Err != nil {
			log.Errorf("✖ Test %s - ERROR\n%s", name, errorChain(res.Err))
			return
		}

		out := res.Outcome
		switch out.Verdict() {
		case domain.VerdictPass:
			log.Infof("✔ Test %s - PASS (%.2f s)", name, out.Elapsed.Seconds())
		case domain.VerdictFail:
			log.Errorf("✖ Test %s - FAIL (%.2f s)\nExpected: %s\nGot: %s",
				name, out.Elapsed.Seconds(),
				executor.Trim(out.Expected), executor.Trim(out.Stdout))
		case domain.VerdictTimeout:
			log.Errorf("✖ Test %s - TIMED OUT!", name)
		}

		if out.IsCompleted() {
			if !out.Exit.Success() {
				log.Debugf("Test %s: solution terminated with %s", name, out.Exit)
			}
			if len(out.Stderr) > 0 && out.Verdict() != domain.VerdictPass {
				log.Debugf("Test %s stderr:\n%s", name, bytes.TrimRight(out.Stderr, "\r\n"))
			}
		}
	}
}

// errorChain prints each wrapped error on its own line, outermost first
func errorChain(err error) string {
	var b bytes.Buffer
	b.WriteString(err.Error())
	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(inner) {
		b.WriteString("\n  caused by: ")
		b.WriteString(inner.Error())
	}
	return b.String()
}
