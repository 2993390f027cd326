package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	barStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	failedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	runningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	dimmedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))
)

const (
	maxBarWidth = 40
	minBarWidth = 10
)

// partial blocks, indexed by eighths of a cell
var partials = []string{" ", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// View renders the progress line:
//
//	sum [00:00:03] ██████████▍          12/40  30% · 3 failed · 4.0 tests/s · ETA 00:00:07 · 5 running
func (m Model) View() string {
	elapsed := m.now.Sub(m.start)
	if elapsed < 0 {
		elapsed = 0
	}

	head := dimmedStyle.Render("[" + formatClock(elapsed) + "]")
	if m.task != "" {
		head = titleStyle.Render(m.task) + " " + head
	}

	failed := fmt.Sprintf("%d failed", m.failed)
	if m.failed > 0 {
		failed = failedStyle.Render(failed)
	}
	parts := []string{
		fmt.Sprintf("%d/%d %3d%%", m.done, m.total, percent(m.done, m.total)),
		failed,
		fmt.Sprintf("%.1f tests/s", rate(m.done, elapsed)),
	}
	if !m.finished {
		parts = append(parts, "ETA "+formatClock(eta(m.done, m.total, elapsed)))
		parts = append(parts, runningStyle.Render(fmt.Sprintf("%d running", m.running)))
	}
	tail := strings.Join(parts, dimmedStyle.Render(" · "))

	width := maxBarWidth
	if m.width > 0 {
		width = m.width - lipgloss.Width(head) - lipgloss.Width(tail) - 2
		width = max(minBarWidth, min(maxBarWidth, width))
	}

	line := head + " " + barStyle.Render(renderBar(width, fraction(m.done, m.total))) + " " + tail
	if m.finished {
		return line + "\n"
	}
	return line
}

// renderBar draws a bar of width cells filled to frac, using eighth blocks
// for the partially filled cell
func renderBar(width int, frac float64) string {
	if width <= 0 {
		return ""
	}
	frac = max(0, min(1, frac))

	eighths := int(frac * float64(width*8))
	full := eighths / 8

	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	if full < width {
		b.WriteString(partials[eighths%8])
		b.WriteString(strings.Repeat(" ", width-full-1))
	}
	return b.String()
}

func fraction(done, total int) float64 {
	if total <= 0 {
		return 1
	}
	return float64(done) / float64(total)
}

func percent(done, total int) int {
	return int(fraction(done, total) * 100)
}

func rate(done int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(done) / elapsed.Seconds()
}

// eta extrapolates the remaining time from the average rate so far
func eta(done, total int, elapsed time.Duration) time.Duration {
	if done <= 0 || done >= total {
		return 0
	}
	perTest := elapsed / time.Duration(done)
	return perTest * time.Duration(total-done)
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
