package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kiwire/pkg/netgraph"
)

// errCheckFailed is returned when a report carries error findings so the
// process exits non-zero after printing it.
var errCheckFailed = errors.New("connectivity check failed")

var checkCmd = &cobra.Command{
	Use:   "check <schematic_file>",
	Short: "Report unconnected pins, floating parts and missing junctions",
	Long: `Build the connectivity graph of a sheet and report wiring defects:
unconnected pins, components with no connected pin, tee and crossing points
without a junction, and collinear overlapping wires.

The command exits with status 1 when any finding is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ed, _, err := openEditor(cmd, args[0])
	if err != nil {
		return err
	}
	report := ed.Validate()
	out := cmd.OutOrStdout()

	if jsonOutput {
		data, err := report.JSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		writeReport(cmd, report)
	}
	if report.HasErrors() {
		return errCheckFailed
	}
	return nil
}

func writeReport(cmd *cobra.Command, report netgraph.Report) {
	out := cmd.OutOrStdout()
	if len(report.Findings) == 0 {
		fmt.Fprintln(out, "No findings")
		return
	}
	for _, f := range report.Findings {
		fmt.Fprintf(out, "%s\n", f)
	}
	fmt.Fprintf(out, "\n%d unconnected, %d floating, %d missing junctions, %d overlaps\n",
		report.Count(netgraph.UnconnectedPin),
		report.Count(netgraph.FloatingComponent),
		report.Count(netgraph.MissingJunction),
		report.Count(netgraph.OverlappingWires))
}
