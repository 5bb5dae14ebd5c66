// cmd/dftimewolf/commands/report.go
package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/hkhalifa/dftimewolf/pkg/engine"
)

// printReport renders the human-readable run report: one line per node in
// declaration order, then the pipeline-level outcome.
func printReport(w io.Writer, report *engine.RunReport) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "\nRun %s (recipe: %s)\n", report.RunID, report.Recipe)
	for _, node := range report.Nodes {
		label := node.ID
		if node.Preflight {
			label += " [preflight]"
		}
		switch node.Status {
		case engine.StatusSucceeded:
			fmt.Fprintf(w, "  %s %s (%s)\n", green("✓"), label, node.EndTime.Sub(node.StartTime).Round(1e6))
		case engine.StatusFailed:
			fmt.Fprintf(w, "  %s %s: %v\n", red("✗"), label, node.Err)
		case engine.StatusSkipped:
			fmt.Fprintf(w, "  %s %s: %s\n", yellow("-"), label, node.Cause)
		default:
			fmt.Fprintf(w, "  ? %s: %s\n", label, node.Status)
		}
	}

	overall := report.Overall.String()
	switch report.Overall {
	case engine.OverallSucceeded:
		overall = green(overall)
	case engine.OverallAborted:
		overall = red(overall)
	default:
		overall = yellow(overall)
	}
	fmt.Fprintf(w, "Overall: %s\n", overall)
}
