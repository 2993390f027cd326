package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case TickMsg:
		if m.finished {
			return m, nil
		}
		m.now = time.Time(msg)
		return m, tickCmd()

	case EventMsg:
		m.done = msg.Progress.Finished
		m.failed = msg.Progress.NotPassed()
		m.running = msg.Running
		if msg.Progress.Total > 0 {
			m.total = msg.Progress.Total
		}

	case SlotsMsg:
		m.running = msg.InUse

	case logLineMsg:
		return m, tea.Println(string(msg))

	case DoneMsg:
		m.finished = true
		m.running = 0
		m.now = time.Now()
		return m, tea.Quit
	}

	return m, nil
}

// Done returns how many tests have finished
func (m Model) Done() int {
	return m.done
}

// Failed returns how many finished tests did not pass
func (m Model) Failed() int {
	return m.failed
}

// Running returns the number of live child processes
func (m Model) Running() int {
	return m.running
}
