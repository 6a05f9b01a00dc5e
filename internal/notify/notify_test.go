package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/carvalueai/client-go/pkg/logging"
)

func TestTerminalLogsBeforeShowing(t *testing.T) {
	var out, logs bytes.Buffer
	n := NewTerminal(&out, logging.NewWithWriter(&logs, "info"))

	n.Success("Inspection booked successfully!")
	n.Failure("Payment cancelled. Please try again when ready.")

	if !strings.Contains(out.String(), "✅ Inspection booked successfully!") {
		t.Fatalf("success not shown: %q", out.String())
	}
	if !strings.Contains(out.String(), "❌ Payment cancelled. Please try again when ready.") {
		t.Fatalf("failure not shown: %q", out.String())
	}
	if !strings.Contains(logs.String(), "Inspection booked successfully!") {
		t.Fatalf("success not logged: %q", logs.String())
	}
	if !strings.Contains(logs.String(), "Payment cancelled") {
		t.Fatalf("failure not logged: %q", logs.String())
	}
}
