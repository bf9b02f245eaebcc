package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var netsCmd = &cobra.Command{
	Use:   "nets <schematic_file>",
	Short: "List the nets of a sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runNets,
}

var sameNetCmd = &cobra.Command{
	Use:   "same-net <schematic_file> <pin> <pin>",
	Short: "Report whether two pins are connected",
	Long: `Report whether two pins, written REF.PIN or REF:PIN, belong to the same
net. Exits with status 1 when they do not.`,
	Args: cobra.ExactArgs(3),
	RunE: runSameNet,
}

func init() {
	rootCmd.AddCommand(netsCmd)
	rootCmd.AddCommand(sameNetCmd)
}

func runNets(cmd *cobra.Command, args []string) error {
	ed, _, err := openEditor(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		data, err := ed.Graph().ExportJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	nets := ed.Nets()
	fmt.Fprintf(out, "Nets: %d\n\n", len(nets))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tNAME\tPINS\tLABELS")
	for _, n := range nets {
		keys := make([]string, len(n.Pins))
		for i, k := range n.Pins {
			keys[i] = k.String()
		}
		name := n.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", n.ID, name, strings.Join(keys, " "), strings.Join(n.Labels, " "))
	}
	return tw.Flush()
}

func runSameNet(cmd *cobra.Command, args []string) error {
	ed, _, err := openEditor(cmd, args[0])
	if err != nil {
		return err
	}
	same, err := ed.SameNet(args[1], args[2])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		fmt.Fprintf(out, "{\"same_net\": %t}\n", same)
	} else if same {
		fmt.Fprintf(out, "%s and %s are on the same net\n", args[1], args[2])
	} else {
		fmt.Fprintf(out, "%s and %s are not connected\n", args[1], args[2])
	}
	if !same {
		return fmt.Errorf("%s and %s are on different nets", args[1], args[2])
	}
	return nil
}
