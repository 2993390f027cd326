// Package logging configures logrus for the CLI and turns runner events
// into per-test log lines.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

// EnvLevel overrides the level chosen by flags, e.g. JUDGERUN_LOG=debug
const EnvLevel = "JUDGERUN_LOG"

const timestampFormat = "02-01-2006 15:04:05"

// Formatter renders entries as
//
//	[14-10-2026 12:00:00 INFO] message key=value
type Formatter struct {
	bracket lipgloss.Style
	levels  map[logrus.Level]lipgloss.Style
	key     lipgloss.Style
}

// NewFormatter creates a formatter writing to w. Colors are dropped when
// color is false.
func NewFormatter(w io.Writer, color bool) *Formatter {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	level := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
	}

	return &Formatter{
		bracket: r.NewStyle().Foreground(lipgloss.Color("240")),
		key:     r.NewStyle().Foreground(lipgloss.Color("240")),
		levels: map[logrus.Level]lipgloss.Style{
			logrus.TraceLevel: level("240"),
			logrus.DebugLevel: level("205"),
			logrus.InfoLevel:  level("42"),
			logrus.WarnLevel:  level("214"),
			logrus.ErrorLevel: level("196"),
			logrus.FatalLevel: level("196"),
			logrus.PanicLevel: level("196"),
		},
	}
}

// Format implements logrus.Formatter
func (f *Formatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	b.WriteString(f.bracket.Render("[" + e.Time.Format(timestampFormat)))
	b.WriteString(" ")
	b.WriteString(f.levels[e.Level].Render(levelName(e.Level)))
	b.WriteString(f.bracket.Render("]"))
	b.WriteString(" ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s%v", f.key.Render(k+"="), e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(l logrus.Level) string {
	if l == logrus.WarnLevel {
		return "WARN"
	}
	return strings.ToUpper(l.String())
}

// Level picks the log level from the verbosity flags. A valid JUDGERUN_LOG
// value wins over both.
func Level(verbose, quiet bool) logrus.Level {
	if env := os.Getenv(EnvLevel); env != "" {
		if lvl, err := logrus.ParseLevel(env); err == nil {
			return lvl
		}
	}
	switch {
	case verbose:
		return logrus.DebugLevel
	case quiet:
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}

// Setup configures the standard logger and returns it
func Setup(w io.Writer, level logrus.Level, color bool) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetOutput(w)
	log.SetLevel(level)
	log.SetFormatter(NewFormatter(w, color))
	return log
}
