package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hochfrequenz/judgerun/internal/config"
	"github.com/hochfrequenz/judgerun/internal/discovery"
	"github.com/hochfrequenz/judgerun/internal/executor"
	"github.com/hochfrequenz/judgerun/internal/logging"
	"github.com/hochfrequenz/judgerun/internal/notify"
	"github.com/hochfrequenz/judgerun/internal/report"
	"github.com/hochfrequenz/judgerun/internal/runner"
	"github.com/hochfrequenz/judgerun/tui"
)

const notifyTimeout = 15 * time.Second

type suiteOptions struct {
	JSON       bool
	Names      bool
	NoProgress bool
}

// suite is one run of a task's tests, from discovery to the printed report
type suite struct {
	rc       config.RunConfig
	opts     suiteOptions
	out      io.Writer
	log      *logrus.Logger
	notifier notify.Notifier
}

func newSuite(cfg *config.Config, opts suiteOptions, out io.Writer) *suite {
	s := &suite{
		rc:   cfg.Run,
		opts: opts,
		out:  out,
		log:  logrus.StandardLogger(),
	}
	if cfg.Notify.Enabled() {
		s.notifier = newNotifier(cfg.Notify)
	}
	return s
}

func newNotifier(cfg config.NotifyConfig) *notify.MultiNotifier {
	var notifiers []notify.Notifier
	if cfg.Desktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier(true))
	}
	if cfg.SlackWebhook != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(cfg.SlackWebhook))
	}
	return notify.NewMultiNotifier(notifiers...)
}

func discoveryOptions(rc config.RunConfig) discovery.Options {
	return discovery.Options{
		Task:       rc.Task,
		InPattern:  rc.InPattern,
		OutPattern: rc.OutPattern,
		Dir:        rc.Dir,
	}
}

func (s *suite) run(ctx context.Context) (*report.Report, error) {
	found, err := discovery.Discover(discoveryOptions(s.rc))
	if err != nil {
		return nil, err
	}
	for _, skipped := range found.Skipped {
		s.log.WithField("path", skipped.Path).Warnf("Skipping file: %s", skipped.Reason)
	}
	if len(found.Tests) == 0 {
		s.log.Warnf("No tests found for task %s", s.rc.Task)
	}

	runID := uuid.NewString()
	exec := executor.New(executor.Config{
		Task:    s.rc.Task,
		Command: s.rc.Command,
		Args:    s.rc.Args,
		Dir:     s.rc.Dir,
		Timeout: s.rc.Timeout(),
		Logger:  s.log,
	})
	pool := runner.NewPool(s.rc.Parallel)

	s.log.Infof("Loaded %d tests for task %s. Running %d tests in parallel.",
		len(found.Tests), s.rc.Task, pool.MaxJobs())
	s.log.Debugf("run %s: %s with timeout %s", runID, exec.Command(), s.rc.Timeout())

	opts := []runner.Option{
		runner.WithPool(pool),
		runner.WithLogger(s.log),
		runner.WithObserver(logging.TestLogger(s.log)),
	}

	start := time.Now()
	var progress *tui.Progress
	logOut := s.log.Out
	if !s.opts.NoProgress && len(found.Tests) > 0 && isTerminal(os.Stderr) {
		progress = tui.Start(tui.ModelConfig{
			Task:    s.rc.Task,
			Total:   len(found.Tests),
			MaxJobs: pool.MaxJobs(),
			Start:   start,
		}, os.Stderr)

		s.log.SetOutput(progress.LogWriter())

		pool.SetOnSlotsChanged(progress.SlotsChanged)
		opts = append(opts, runner.WithObserver(progress.Observer()))
	}

	results := runner.New(exec, s.rc.Parallel, opts...).Run(ctx, found.Tests)

	if progress != nil {
		err := progress.Finish()
		s.log.SetOutput(logOut)
		if err != nil {
			s.log.WithError(err).Debug("progress bar failed")
		}
	}

	rep := report.Aggregate(runID, len(found.Tests), results)
	rep.Task = s.rc.Task
	rep.Elapsed = time.Since(start)

	if s.notifier != nil {
		// An interrupted run still reports what it finished
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		if err := s.notifier.Send(sendCtx, notify.FromReport(rep)); err != nil {
			s.log.WithError(err).Warn("Sending notification failed")
		}
		cancel()
	}

	if s.opts.JSON {
		return rep, report.WriteJSON(s.out, rep)
	}
	return rep, report.Render(s.out, rep, report.RenderOptions{
		Names: s.opts.Names,
		Color: writerIsTerminal(s.out),
	})
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
