// Package notify delivers user-visible outcomes through one uniform channel.
package notify

import (
	"fmt"
	"io"

	"github.com/carvalueai/client-go/pkg/logging"
)

// Notifier is the single channel for user-visible outcomes. Every message is
// logged before it is shown.
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// Terminal writes notifications to a terminal stream.
type Terminal struct {
	out    io.Writer
	logger *logging.Logger
}

// NewTerminal creates a terminal notifier.
func NewTerminal(out io.Writer, logger *logging.Logger) *Terminal {
	if logger == nil {
		logger = logging.Default()
	}
	return &Terminal{out: out, logger: logger}
}

func (t *Terminal) Success(message string) {
	t.logger.Info("user notification", "kind", "success", "message", message)
	fmt.Fprintf(t.out, "✅ %s\n", message)
}

func (t *Terminal) Failure(message string) {
	t.logger.Error("user notification", "kind", "failure", "message", message)
	fmt.Fprintf(t.out, "❌ %s\n", message)
}
