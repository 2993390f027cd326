package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// RenderOptions controls the text summary
type RenderOptions struct {
	// Names lists the test names of each non-empty bucket
	Names bool
	// Color enables ANSI styling when w is a terminal
	Color bool
}

type styles struct {
	title, pass, fail, warn, dim lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		title: r.NewStyle().Bold(true),
		pass:  r.NewStyle().Foreground(lipgloss.Color("42")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Render writes the summary block:
//
//	*** TEST REPORT ***
//	  TOTAL: 3
//	✔ PASS: 1
//	✖ FAIL: 1
//	✖ TIMEOUT: 1
//	✖ ERROR: 0
func Render(w io.Writer, r *Report, opts RenderOptions) error {
	st := newStyles(w, opts.Color)

	var b strings.Builder
	b.WriteString(st.title.Render("*** TEST REPORT ***") + "\n")
	fmt.Fprintf(&b, "  TOTAL: %d\n", r.Total)

	line := func(style lipgloss.Style, mark, label string, names []string) {
		b.WriteString(style.Render(fmt.Sprintf("%s %s: %d", mark, label, len(names))) + "\n")
		if opts.Names && len(names) > 0 {
			b.WriteString(st.dim.Render("    "+strings.Join(names, " ")) + "\n")
		}
	}
	line(st.pass, "✔", "PASS", r.Pass)
	line(st.fail, "✖", "FAIL", r.Fail)
	line(st.fail, "✖", "TIMEOUT", r.Timeout)
	if len(r.Errored) > 0 || r.Judged() < r.Total {
		line(st.warn, "✖", "ERROR", r.Errored)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type bucketJSON struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

type reportJSON struct {
	RunID          string     `json:"run_id"`
	Task           string     `json:"task,omitempty"`
	Total          int        `json:"total"`
	Pass           bucketJSON `json:"pass"`
	Fail           bucketJSON `json:"fail"`
	Timeout        bucketJSON `json:"timeout"`
	Error          bucketJSON `json:"error"`
	ElapsedSeconds float64    `json:"elapsed_seconds"`
}

func bucket(names []string) bucketJSON {
	if names == nil {
		names = []string{}
	}
	return bucketJSON{Count: len(names), Names: names}
}

// WriteJSON writes the report as an indented JSON document
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reportJSON{
		RunID:          r.RunID,
		Task:           r.Task,
		Total:          r.Total,
		Pass:           bucket(r.Pass),
		Fail:           bucket(r.Fail),
		Timeout:        bucket(r.Timeout),
		Error:          bucket(r.Errored),
		ElapsedSeconds: r.Elapsed.Seconds(),
	})
}
