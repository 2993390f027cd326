package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hochfrequenz/judgerun/internal/runner"
)

// Model is the progress bar shown while a suite runs
type Model struct {
	// Run
	task    string
	total   int
	maxJobs int
	start   time.Time

	// Counters
	done    int
	failed  int
	running int

	// UI state
	width    int
	now      time.Time
	finished bool
}

// ModelConfig holds the initial data for the progress model
type ModelConfig struct {
	Task    string
	Total   int
	MaxJobs int
	Start   time.Time
}

// NewModel creates a new progress model
func NewModel(cfg ModelConfig) Model {
	start := cfg.Start
	if start.IsZero() {
		start = time.Now()
	}
	return Model{
		task:    cfg.Task,
		total:   cfg.Total,
		maxJobs: cfg.MaxJobs,
		start:   start,
		now:     start,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// TickMsg refreshes elapsed time and rate
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// EventMsg carries one finished test from the scheduler
type EventMsg runner.Event

// SlotsMsg reports the number of live child processes
type SlotsMsg struct {
	InUse int
}

// DoneMsg ends the program after the last event
type DoneMsg struct{}

// logLineMsg prints a line above the bar
type logLineMsg string
