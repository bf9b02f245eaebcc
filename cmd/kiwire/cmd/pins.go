package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kiwire/pkg/pins"
)

var pinsCmd = &cobra.Command{
	Use:   "pins <schematic_file> <component>",
	Short: "List the resolved pins of a component",
	Long: `Resolve every pin of a placed component to its absolute position and
drawing-space orientation, taking rotation, mirror and unit into account.`,
	Args: cobra.ExactArgs(2),
	RunE: runPins,
}

func init() {
	rootCmd.AddCommand(pinsCmd)
}

func runPins(cmd *cobra.Command, args []string) error {
	ed, _, err := openEditor(cmd, args[0])
	if err != nil {
		return err
	}
	resolved, err := ed.Pins(args[1])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		type jsonPin struct {
			pins.Resolved
			Orientation string `json:"orientation"`
		}
		list := make([]jsonPin, len(resolved))
		for i, p := range resolved {
			list[i] = jsonPin{Resolved: p, Orientation: p.Orientation.String()}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	writePins(out, resolved)
	return nil
}

func writePins(out io.Writer, resolved []pins.Resolved) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  PIN\tNAME\tTYPE\tPOSITION\tORIENTATION")
	for _, p := range resolved {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", p.Number, p.Name, p.ElectricalType, p.Position, p.Orientation)
	}
	tw.Flush()
}
