// Package executor runs one test case: it spawns the candidate program,
// feeds it the input file, waits for it under a timeout and judges its
// stdout against the expected output.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hochfrequenz/judgerun/internal/domain"
)

// waitDelay bounds how long Wait keeps draining pipes after the child
// exited or was killed, in case something it spawned still holds them open
const waitDelay = 500 * time.Millisecond

// Config configures the test executor
type Config struct {
	Task    string
	Command string
	Args    []string
	Dir     string
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

// Executor runs test cases one child process at a time
type Executor struct {
	config  Config
	command string
	log     logrus.FieldLogger
}

// New creates a new test executor
func New(config Config) *Executor {
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Executor{
		config:  config,
		command: ResolveCommand(config.Task, config.Command, config.Dir),
		log:     log.WithField("component", "executor"),
	}
}

// Command returns the resolved program path
func (e *Executor) Command() string {
	return e.command
}

// Run executes tc to a terminal outcome. A timeout is reported as a
// TimedOut outcome with a nil error. Anything else that prevents judging
// returns a *domain.ExecutionError.
func (e *Executor) Run(ctx context.Context, tc domain.TestCase) (domain.Outcome, error) {
	log := e.log.WithField("test", tc.Name)

	input, err := os.ReadFile(tc.InputPath)
	if err != nil {
		return domain.Outcome{}, execErr(tc, domain.OpReadInput, err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Outcome{}, execErr(tc, domain.OpSpawn, err)
	}

	// The timeout clock starts here, right before spawn
	runCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.command, e.config.Args...)
	cmd.Dir = e.config.Dir
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	log.Debugf("running %s", e.command)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return domain.Outcome{}, execErr(tc, domain.OpSpawn, err)
	}
	log.Debugf("started with PID %d", cmd.Process.Pid)

	waitErr := cmd.Wait()
	elapsed := time.Since(start)
	// Anything the child left behind in its group dies with it
	killGroup(cmd)

	exit := domain.ExitInfo{}
	if cmd.ProcessState != nil {
		exit.Code = cmd.ProcessState.ExitCode()
		exit.Signal = signalName(cmd.ProcessState)
	}

	if waitErr != nil {
		switch {
		case ctx.Err() != nil:
			return domain.Outcome{}, execErr(tc, domain.OpWait, ctx.Err())
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			log.Debugf("killed after %.2fs", elapsed.Seconds())
			return domain.TimedOut(tc.Name), nil
		}

		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			log.Debugf("exited with %s", exit)
		case errors.Is(waitErr, exec.ErrWaitDelay):
			// The child exited but a leftover process held its pipes open.
			// What reached stdout by then is judged.
			log.Debugf("exited with %s, pipes still open after %v", exit, waitDelay)
		default:
			return domain.Outcome{}, execErr(tc, domain.OpCopyIO, waitErr)
		}
	}

	expected, err := os.ReadFile(tc.OutputPath)
	if err != nil {
		return domain.Outcome{}, execErr(tc, domain.OpReadExpected, err)
	}

	return domain.Outcome{
		Kind:     domain.KindCompleted,
		Name:     tc.Name,
		Elapsed:  elapsed,
		Correct:  Equal(stdout.Bytes(), expected),
		Stdout:   stdout.Bytes(),
		Stdin:    input,
		Expected: expected,
		Stderr:   stderr.Bytes(),
		Exit:     exit,
	}, nil
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.config.Timeout)
}

func execErr(tc domain.TestCase, op string, err error) error {
	return &domain.ExecutionError{Test: tc.Name, Op: op, Err: err}
}
