// Package notify tells the user about finished runs outside the terminal,
// which is mostly useful together with watch mode and CI.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hochfrequenz/judgerun/internal/report"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotifyInfo NotificationType = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

// Notification represents a notification to be sent
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	RunID   string // Optional run reference
	Fields  []Field
}

// Field is one labelled count in a run summary. Targets that cannot show
// structured data leave them out.
type Field struct {
	Label string
	Value string
}

// Notifier is the interface for sending notifications
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// MultiNotifier sends to multiple notifiers
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that sends to all provided notifiers
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Send delivers n to every notifier, even after one of them failed
func (m *MultiNotifier) Send(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromReport summarizes a finished run:
//
//	sum: 3/4 passed
//	FAIL: 02 · TIMEOUT: 04
func FromReport(r *report.Report) Notification {
	n := Notification{
		Title: fmt.Sprintf("%s: %d/%d passed", r.Task, len(r.Pass), r.Total),
		RunID: r.RunID,
		Type:  NotifySuccess,
	}
	n.Fields = summaryFields(r)
	if r.Total == 0 {
		n.Type = NotifyWarning
		n.Message = "no tests found"
		return n
	}
	if r.AllPassed() {
		n.Message = "all tests passed"
		return n
	}

	n.Type = NotifyError
	var parts []string
	for _, b := range []struct {
		label string
		names []string
	}{
		{"FAIL", r.Fail},
		{"TIMEOUT", r.Timeout},
		{"ERROR", r.Errored},
	} {
		if len(b.names) > 0 {
			parts = append(parts, b.label+": "+strings.Join(b.names, " "))
		}
	}
	n.Message = strings.Join(parts, " · ")
	return n
}

func summaryFields(r *report.Report) []Field {
	return []Field{
		{"Passed", strconv.Itoa(len(r.Pass))},
		{"Failed", strconv.Itoa(len(r.Fail))},
		{"Timed out", strconv.Itoa(len(r.Timeout))},
		{"Errors", strconv.Itoa(len(r.Errored))},
		{"Elapsed", r.Elapsed.Round(time.Millisecond).String()},
	}
}
