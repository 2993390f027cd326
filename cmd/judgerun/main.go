package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hochfrequenz/judgerun/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitFatal  = 2
)

// exitError carries a non-zero exit code without a message; the report
// has already been printed
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	verbose    bool
	quiet      bool
}

func newRootCmd() *cobra.Command {
	var global globalFlags
	var flags runFlags

	rootCmd := &cobra.Command{
		Use:   "judgerun TASK [-- ARGS...]",
		Short: "judgerun - batch test runner for competitive programming solutions",
		Long: `judgerun runs a solution against every input file of a task, compares its
output with the expected output and reports which tests passed, failed or
timed out.

Tests are found with filename patterns: {task} is replaced with the task name,
{test} matches the test id. By default inputs are in/{task}{test}.in and
expected outputs are out/{task}{test}.out.`,
		Version:       version,
		Args:          taskArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(os.Stderr, logging.Level(global.verbose, global.quiet), isTerminal(os.Stderr))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, &global, &flags)
		},
	}
	rootCmd.PersistentFlags().StringVar(&global.configPath, "config", "", "config file path (default: nearest judgerun.toml)")
	rootCmd.PersistentFlags().BoolVarP(&global.verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().BoolVarP(&global.quiet, "quiet", "q", false, "log warnings and errors only")
	addRunFlags(rootCmd, &flags)
	addReportFlags(rootCmd, &flags)

	addCommands(rootCmd, &global)
	return rootCmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFatal
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		var ee *exitError
		if !errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(exitCode(err))
}
