package tui

import (
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hochfrequenz/judgerun/internal/runner"
)

// Progress runs the bubbletea program for one suite in the background
type Progress struct {
	program *tea.Program
	maxJobs int
	done    chan struct{}
	err     error
}

// Start launches the progress program rendering to out. Input is not
// read, so the terminal stays in cooked mode and ctrl+c reaches the
// process as SIGINT.
func Start(cfg ModelConfig, out io.Writer) *Progress {
	// Package styles use the default renderer; match its profile to out
	lipgloss.SetColorProfile(lipgloss.NewRenderer(out).ColorProfile())

	p := &Progress{
		program: tea.NewProgram(NewModel(cfg),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		maxJobs: cfg.MaxJobs,
		done:    make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		_, p.err = p.program.Run()
	}()
	return p
}

// Observer forwards scheduler events to the program
func (p *Progress) Observer() runner.Observer {
	return func(ev runner.Event) {
		p.program.Send(EventMsg(ev))
	}
}

// SlotsChanged is a runner.Pool slot callback
func (p *Progress) SlotsChanged(available int) {
	p.program.Send(SlotsMsg{InUse: max(0, p.maxJobs-available)})
}

// LogWriter returns a writer that prints each line above the bar
func (p *Progress) LogWriter() io.Writer {
	return LogWriter{program: p.program}
}

// Finish renders the final state and waits for the program to exit
func (p *Progress) Finish() error {
	p.program.Send(DoneMsg{})
	<-p.done
	return p.err
}

// LogWriter routes writes through a running program so they do not tear
// the progress line. Writes after the program exited are dropped.
type LogWriter struct {
	program *tea.Program
}

func (w LogWriter) Write(b []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\n"), "\n") {
		w.program.Send(logLineMsg(line))
	}
	return len(b), nil
}
