package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kiwire/pkg/editor"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/schematic"
)

var infoCmd = &cobra.Command{
	Use:   "info <schematic_file> [component]",
	Short: "Show schematic information",
	Long: `Display information about a KiCad schematic file.

Without component argument: shows schematic summary
With component argument: shows details for that specific component`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ed, _, err := openEditor(cmd, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) >= 2 {
		return showComponentDetails(out, ed, args[1])
	}

	showSummary(out, ed.Schematic(), args[0])
	return nil
}

func showSummary(out io.Writer, sch *schematic.Schematic, filename string) {
	fmt.Fprintf(out, "Schematic: %s\n", filename)
	fmt.Fprintf(out, "Version: %d\n", sch.Version)
	fmt.Fprintf(out, "Generator: %s", sch.Generator)
	if sch.GeneratorVer != "" {
		fmt.Fprintf(out, " v%s", sch.GeneratorVer)
	}
	fmt.Fprintln(out)
	if sch.Paper != "" {
		fmt.Fprintf(out, "Paper: %s\n", sch.Paper)
	}
	fmt.Fprintln(out)

	// Title block
	if sch.TitleBlock.Title != "" || sch.TitleBlock.Revision != "" {
		fmt.Fprintln(out, "Title Block:")
		if sch.TitleBlock.Title != "" {
			fmt.Fprintf(out, "  Title: %s\n", sch.TitleBlock.Title)
		}
		if sch.TitleBlock.Date != "" {
			fmt.Fprintf(out, "  Date: %s\n", sch.TitleBlock.Date)
		}
		if sch.TitleBlock.Revision != "" {
			fmt.Fprintf(out, "  Revision: %s\n", sch.TitleBlock.Revision)
		}
		if sch.TitleBlock.Company != "" {
			fmt.Fprintf(out, "  Company: %s\n", sch.TitleBlock.Company)
		}
		fmt.Fprintln(out)
	}

	// Statistics
	fmt.Fprintln(out, "Statistics:")
	fmt.Fprintf(out, "  Components: %d\n", len(sch.GetAllReferences()))
	fmt.Fprintf(out, "  Library symbols: %d\n", len(sch.LibSymbols))
	fmt.Fprintf(out, "  Wires: %d\n", len(sch.Wires))
	fmt.Fprintf(out, "  Buses: %d\n", sch.Buses)
	fmt.Fprintf(out, "  Junctions: %d\n", len(sch.Junctions))
	fmt.Fprintf(out, "  Labels: %d\n", len(sch.Labels))
	fmt.Fprintf(out, "  Global labels: %d\n", len(sch.GlobalLabels))
	fmt.Fprintf(out, "  Hierarchical labels: %d\n", len(sch.HierLabels))
	fmt.Fprintf(out, "  Sheets: %d\n", len(sch.Sheets))
	fmt.Fprintf(out, "  No-connects: %d\n", len(sch.NoConnects))
	fmt.Fprintln(out)

	// Component list grouped by reference prefix
	byPrefix := make(map[string][]string)
	for _, ref := range sch.GetAllReferences() {
		prefix := refPrefix(ref)
		byPrefix[prefix] = append(byPrefix[prefix], ref)
	}
	if len(byPrefix) > 0 {
		fmt.Fprintln(out, "Components:")
		var prefixes []string
		for p := range byPrefix {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)
		for _, prefix := range prefixes {
			refs := byPrefix[prefix]
			sort.Strings(refs)
			fmt.Fprintf(out, "  %s: %s\n", prefix, strings.Join(refs, ", "))
		}
		fmt.Fprintln(out)
	}

	labels := sch.GetLabels()
	if len(labels) > 0 {
		fmt.Fprintln(out, "Net Labels:")
		sort.Strings(labels)
		for _, l := range labels {
			fmt.Fprintf(out, "  %s\n", l)
		}
		fmt.Fprintln(out)
	}

	if len(sch.Sheets) > 0 {
		fmt.Fprintln(out, "Hierarchical Sheets:")
		for _, sheet := range sch.Sheets {
			fmt.Fprintf(out, "  %s (%s)\n", sheet.Name, sheet.FileName)
			if len(sheet.Pins) > 0 {
				var pinNames []string
				for _, p := range sheet.Pins {
					pinNames = append(pinNames, p.Name)
				}
				fmt.Fprintf(out, "    Pins: %s\n", strings.Join(pinNames, ", "))
			}
		}
	}
}

func showComponentDetails(out io.Writer, ed *editor.Editor, ref string) error {
	resolved, err := ed.Pins(ref)
	if err != nil {
		return err
	}
	sym, err := ed.Symbol(ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Component: %s\n", ref)
	fmt.Fprintf(out, "Library: %s\n", sym.LibID)
	fmt.Fprintf(out, "Position: (%.2f, %.2f)\n", sym.Position.X, sym.Position.Y)
	if sym.Angle != 0 {
		fmt.Fprintf(out, "Rotation: %.0f°\n", sym.Angle)
	}
	if sym.Mirror != "" {
		fmt.Fprintf(out, "Mirror: %s\n", sym.Mirror)
	}
	fmt.Fprintf(out, "Unit: %d\n", sym.Unit)
	fmt.Fprintln(out)

	if len(sym.Properties) > 0 {
		fmt.Fprintln(out, "Properties:")
		for _, prop := range sym.Properties {
			fmt.Fprintf(out, "  %s: %s\n", prop.Key, prop.Value)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Pins:")
	writePins(out, resolved)
	return nil
}

// refPrefix extracts the letter prefix from a reference designator
func refPrefix(ref string) string {
	i := strings.IndexAny(ref, "0123456789")
	if i <= 0 {
		return ref
	}
	return ref[:i]
}
