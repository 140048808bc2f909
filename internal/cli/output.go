package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/troutline/stocking-events/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteSummary writes a poll cycle summary in the requested format.
func WriteSummary(w io.Writer, sum *pipeline.Summary, format OutputFormat) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sum); err != nil {
			return fmt.Errorf("encoding summary: %w", err)
		}
		return nil
	}

	fmt.Fprintf(w, "Poll cycle %s\n", sum.CycleID)
	fmt.Fprintf(w, "  Parsed:        %d events\n", sum.Parsed)
	fmt.Fprintf(w, "  Inserted:      %d new\n", sum.Inserted)
	fmt.Fprintf(w, "  Subscriptions: %d\n", sum.Subscriptions)
	fmt.Fprintf(w, "  Matched:       %d notifications\n", sum.Matched)
	fmt.Fprintf(w, "  Pushed:        %d\n", sum.Pushed)
	if sum.TransportResponse != "" {
		fmt.Fprintf(w, "  Transport:     %s\n", sum.TransportResponse)
	}
	return nil
}
