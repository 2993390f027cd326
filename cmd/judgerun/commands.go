package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hochfrequenz/judgerun/internal/config"
	"github.com/hochfrequenz/judgerun/internal/discovery"
	"github.com/hochfrequenz/judgerun/internal/domain"
	"github.com/hochfrequenz/judgerun/internal/executor"
	"github.com/hochfrequenz/judgerun/internal/watch"
)

// runFlags override the values from the config file when set
type runFlags struct {
	command    string
	inPattern  string
	outPattern string
	timeout    int
	parallel   int
	dir        string

	json       bool
	names      bool
	noProgress bool
	notify     bool
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	fs := cmd.Flags()
	fs.StringVarP(&f.command, "command", "c", "", "command to run (default: the task name, with .exe on Windows)")
	fs.StringVarP(&f.inPattern, "in-pattern", "i", config.DefaultInPattern, "input filename pattern")
	fs.StringVarP(&f.outPattern, "out-pattern", "o", config.DefaultOutPattern, "expected output filename pattern")
	fs.IntVarP(&f.timeout, "timeout", "t", config.DefaultTimeoutSecs, "timeout per test in seconds")
	fs.IntVarP(&f.parallel, "parallel", "p", config.DefaultParallel, "how many tests can run in parallel")
	fs.StringVar(&f.dir, "dir", "", "directory patterns and the command are relative to")
}

func addReportFlags(cmd *cobra.Command, f *runFlags) {
	fs := cmd.Flags()
	fs.BoolVar(&f.json, "json", false, "print the report as JSON")
	fs.BoolVar(&f.names, "names", false, "list test names in the report")
	fs.BoolVar(&f.noProgress, "no-progress", false, "disable the progress bar")
	fs.BoolVar(&f.notify, "notify", false, "send a desktop notification when a run finishes")
}

func addCommands(rootCmd *cobra.Command, global *globalFlags) {
	// run command
	var runOpts runFlags
	runCmd := &cobra.Command{
		Use:   "run TASK [-- ARGS...]",
		Short: "Run all tests of a task (same as judgerun TASK)",
		Args:  taskArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, global, &runOpts)
		},
	}
	addRunFlags(runCmd, &runOpts)
	addReportFlags(runCmd, &runOpts)
	rootCmd.AddCommand(runCmd)

	// list command
	var listOpts runFlags
	listCmd := &cobra.Command{
		Use:   "list TASK",
		Short: "List the tests of a task without running them",
		Args:  taskArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, global, &listOpts)
		},
	}
	addRunFlags(listCmd, &listOpts)
	rootCmd.AddCommand(listCmd)

	// watch command
	var watchOpts runFlags
	watchCmd := &cobra.Command{
		Use:   "watch TASK [-- ARGS...]",
		Short: "Run the tests of a task again whenever the solution or test files change",
		Args:  taskArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, global, &watchOpts)
		},
	}
	addRunFlags(watchCmd, &watchOpts)
	addReportFlags(watchCmd, &watchOpts)
	rootCmd.AddCommand(watchCmd)

	// init command
	var initOpts runFlags
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a judgerun.toml with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, global, &initOpts, force)
		},
	}
	addRunFlags(initCmd, &initOpts)
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)

	// version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "judgerun %s\n", version)
		},
	})
}

// taskArgs accepts exactly one task before an optional -- separator
func taskArgs(cmd *cobra.Command, args []string) error {
	n := len(args)
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		n = dash
	}
	if n != 1 {
		return fmt.Errorf("expected exactly one TASK before --, got %d", n)
	}
	return nil
}

// splitArgs returns the task and the arguments after --
func splitArgs(cmd *cobra.Command, args []string) (task string, extra []string) {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		return args[0], args[dash:]
	}
	return args[0], nil
}

// applyFlags copies explicitly set flags over the file configuration
func applyFlags(fs *pflag.FlagSet, rc *config.RunConfig, f *runFlags) {
	if fs.Changed("command") {
		rc.Command = f.command
	}
	if fs.Changed("in-pattern") {
		rc.InPattern = f.inPattern
	}
	if fs.Changed("out-pattern") {
		rc.OutPattern = f.outPattern
	}
	if fs.Changed("timeout") {
		rc.TimeoutSecs = f.timeout
	}
	if fs.Changed("parallel") {
		rc.Parallel = f.parallel
	}
	if fs.Changed("dir") {
		rc.Dir = config.ExpandPath(f.dir)
	}
}

// resolveConfig layers defaults, the config file, flags and the
// positional arguments, then validates the run section
func resolveConfig(cmd *cobra.Command, args []string, global *globalFlags, f *runFlags) (*config.Config, error) {
	cfg, err := config.LoadWithLocalFallback(global.configPath)
	if err != nil {
		return nil, err
	}

	task, extra := splitArgs(cmd, args)
	cfg.Run.Task = task
	if extra != nil {
		cfg.Run.Args = extra
	}
	applyFlags(cmd.Flags(), &cfg.Run, f)
	if f.notify {
		cfg.Notify.Desktop = true
	}

	if err := cfg.Run.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func suiteOpts(f *runFlags) suiteOptions {
	return suiteOptions{
		JSON:       f.json,
		Names:      f.names,
		NoProgress: f.noProgress,
	}
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func runRun(cmd *cobra.Command, args []string, global *globalFlags, f *runFlags) error {
	cfg, err := resolveConfig(cmd, args, global, f)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	s := newSuite(cfg, suiteOpts(f), cmd.OutOrStdout())

	rep, err := s.run(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		logrus.Warn("Run interrupted")
	}
	if code := rep.ExitCode(); code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

func runList(cmd *cobra.Command, args []string, global *globalFlags, f *runFlags) error {
	cfg, err := resolveConfig(cmd, args, global, f)
	if err != nil {
		return err
	}
	rc := cfg.Run

	found, err := discovery.Discover(discoveryOptions(rc))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEST\tINPUT\tOUTPUT")
	for _, tc := range found.Tests {
		name := tc.Name
		if name == "" {
			name = `""`
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, tc.InputPath, tc.OutputPath)
	}
	w.Flush()

	if len(found.Skipped) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SKIPPED\tREASON")
		for _, s := range found.Skipped {
			fmt.Fprintf(w, "%s\t%s\n", s.Path, s.Reason)
		}
		w.Flush()
	}

	fmt.Fprintf(out, "\n%d tests for task %s\n", len(found.Tests), rc.Task)
	return nil
}

func runWatch(cmd *cobra.Command, args []string, global *globalFlags, f *runFlags) error {
	cfg, err := resolveConfig(cmd, args, global, f)
	if err != nil {
		return err
	}
	rc := cfg.Run

	ctx, stop := signalContext(cmd)
	defer stop()

	trigger := make(chan []string, 1)
	w, err := watch.New(func(changed []string) {
		select {
		case trigger <- changed:
		default:
			// A re-run is already queued
		}
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Stop()

	for _, root := range discovery.Roots(discoveryOptions(rc)) {
		if err := w.AddDir(root); err != nil {
			logrus.WithError(err).Warnf("Cannot watch %s", root)
		}
	}
	if exe := commandPath(rc); exe != "" {
		if err := w.AddFile(exe); err != nil {
			logrus.WithError(err).Warnf("Cannot watch %s", exe)
		}
	}
	w.Start(ctx)

	for {
		if _, err := newSuite(cfg, suiteOpts(f), cmd.OutOrStdout()).run(ctx); err != nil {
			if !domain.IsFatal(err) {
				return err
			}
			logrus.Error(err)
		}

		logrus.Info("Watching for changes, press Ctrl-C to stop")
		select {
		case <-ctx.Done():
			return nil
		case changed := <-trigger:
			logrus.Infof("%d file(s) changed, running again", len(changed))
			logrus.Debugf("changed: %s", strings.Join(changed, ", "))
		}
	}
}

// commandPath returns the file to watch for the solution, or "" when the
// command is looked up on PATH
func commandPath(rc config.RunConfig) string {
	command := executor.ResolveCommand(rc.Task, rc.Command, rc.Dir)
	if !strings.ContainsAny(command, `/\`) {
		return ""
	}
	if filepath.IsAbs(command) || rc.Dir == "" {
		return command
	}
	return filepath.Join(rc.Dir, command)
}

func runInit(cmd *cobra.Command, global *globalFlags, f *runFlags, force bool) error {
	path := global.configPath
	if path == "" {
		path = config.LocalConfigName
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := config.Default()
	applyFlags(cmd.Flags(), &cfg.Run, f)
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
