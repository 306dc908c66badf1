// Package notifier reports the terminal outcome of a run to an external
// sink. The CLI always logs; a webhook can be layered on via config.
package notifier

import (
	"log/slog"

	"github.com/anshulm/replrun/internal/replicate"
)

// Notifier delivers one finished outcome somewhere.
type Notifier interface {
	Notify(outcome replicate.Outcome) error
}

// Ensure LogNotifier implements Notifier.
var _ Notifier = (*LogNotifier)(nil)

// LogNotifier writes the outcome to the given logger as a structured message.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs the outcome via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the outcome kind and message. Returns nil (stdout logging does
// not fail).
func (n *LogNotifier) Notify(outcome replicate.Outcome) error {
	args := []any{"kind", outcome.Kind.String()}
	if outcome.OK() {
		args = append(args, "chars", len(outcome.Text))
		n.logger.Info("run finished", args...)
		return nil
	}
	args = append(args, "reason", outcome.Message())
	n.logger.Warn("run finished", args...)
	return nil
}
