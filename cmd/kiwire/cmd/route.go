package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/kiwire/pkg/route"
)

var outputURL string

var routeCmd = &cobra.Command{
	Use:   "route <schematic_file> <from> <to>",
	Short: "Preview an orthogonal route between two endpoints",
	Long: `Compute the wire path between two endpoints and the junctions it would
need, without changing the schematic.`,
	Args: cobra.ExactArgs(3),
	RunE: runRoute,
}

var connectCmd = &cobra.Command{
	Use:   "connect <schematic_file> <from> <to>",
	Short: "Add a wire between two endpoints",
	Long: `Route a wire between two endpoints, add it and any junctions it needs
to the schematic and write the result to --output.`,
	Args: cobra.ExactArgs(3),
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVarP(&outputURL, "output", "o", "", "where to write the edited schematic (path or afs URL)")
}

type routeResult struct {
	Strategy  string       `json:"strategy"`
	Path      []geom.Point `json:"path"`
	Length    float64      `json:"length"`
	Junctions []geom.Point `json:"junctions"`
	Wire      string       `json:"wire,omitempty"`
}

func runRoute(cmd *cobra.Command, args []string) error {
	ed, cfg, err := openEditor(cmd, args[0])
	if err != nil {
		return err
	}
	path, err := ed.Route(args[1], args[2], cfg.Strategy)
	if err != nil {
		return err
	}
	junctions, err := ed.Junctions(path)
	if err != nil {
		return err
	}
	return writeRoute(cmd.OutOrStdout(), routeResult{
		Strategy:  chosen(path, cfg.Strategy).String(),
		Path:      path,
		Length:    path.Length(),
		Junctions: junctions,
	})
}

func runConnect(cmd *cobra.Command, args []string) error {
	if outputURL == "" {
		return errors.New("connect: --output is required")
	}
	ed, cfg, err := openEditor(cmd, args[0])
	if err != nil {
		return err
	}
	conn, err := ed.Connect(args[1], args[2], cfg.Strategy)
	if err != nil {
		return err
	}
	if err := ed.Schematic().Save(cmd.Context(), outputURL); err != nil {
		return err
	}

	junctions := make([]geom.Point, len(conn.Junctions))
	for i, j := range conn.Junctions {
		junctions[i] = j.Position
	}
	return writeRoute(cmd.OutOrStdout(), routeResult{
		Strategy:  chosen(conn.Path, cfg.Strategy).String(),
		Path:      conn.Path,
		Length:    conn.Path.Length(),
		Junctions: junctions,
		Wire:      conn.Wire.UUID,
	})
}

// chosen reports the strategy a path was built with. A path without a
// corner is direct whatever was asked for.
func chosen(path route.Path, s route.Strategy) route.Strategy {
	if len(path) == 2 {
		return route.Direct
	}
	return route.Choose(path.Start(), path.End(), s)
}

func writeRoute(out io.Writer, r routeResult) error {
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	fmt.Fprintf(out, "Strategy: %s\n", r.Strategy)
	fmt.Fprintln(out, "Path:")
	for _, p := range r.Path {
		fmt.Fprintf(out, "  %s\n", p)
	}
	fmt.Fprintf(out, "Length: %s mm\n", schematicNumber(r.Length))
	if len(r.Junctions) == 0 {
		fmt.Fprintln(out, "Junctions: none")
	} else {
		fmt.Fprintln(out, "Junctions:")
		for _, j := range r.Junctions {
			fmt.Fprintf(out, "  %s\n", j)
		}
	}
	if r.Wire != "" {
		fmt.Fprintf(out, "Wire: %s\n", r.Wire)
	}
	return nil
}

func schematicNumber(v float64) string {
	return string(kicadsexp.Float(v))
}
