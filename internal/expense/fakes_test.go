package expense

import (
	"context"
	"errors"

	"gitlab.com/yelinaung/expense-tracker/internal/budget"
)

// stubCategorizer returns a fixed label or error and counts calls.
type stubCategorizer struct {
	label string
	err   error
	calls int
}

func (s *stubCategorizer) Categorize(context.Context, string) (string, error) {
	s.calls++
	return s.label, s.err
}

// recordingNotifier keeps every alert it receives.
type recordingNotifier struct {
	alerts []budget.Alert
	err    error
}

func (r *recordingNotifier) Notify(_ context.Context, a budget.Alert) error {
	r.alerts = append(r.alerts, a)
	return r.err
}

var errBoom = errors.New("boom")
