package notify

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DryRunSender prints what would be pushed without calling the gateway.
type DryRunSender struct {
	Out io.Writer
}

// NewDryRunSender creates a dry-run sender writing to stdout.
func NewDryRunSender() *DryRunSender {
	return &DryRunSender{Out: os.Stdout}
}

// Send prints each message in the batch.
func (s *DryRunSender) Send(_ context.Context, msgs []*Message) (string, error) {
	for i, m := range msgs {
		fmt.Fprintf(s.Out, "--- Message %d/%d → %s ---\n", i+1, len(msgs), m.To)
		fmt.Fprintln(s.Out, m.Title)
		fmt.Fprintln(s.Out, m.Body)
		fmt.Fprintln(s.Out)
	}
	return fmt.Sprintf(`{"dry_run":true,"messages":%d}`, len(msgs)), nil
}
