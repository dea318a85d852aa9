package notify

import (
	"context"
	"errors"

	"gitlab.com/yelinaung/expense-tracker/internal/budget"
)

// Multi sends each alert to every notifier, even when some fail.
type Multi []budget.Notifier

// Notify returns the joined errors of all notifiers.
func (m Multi) Notify(ctx context.Context, alert budget.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
