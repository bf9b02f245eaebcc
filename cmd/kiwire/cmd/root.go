package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kiwire/pkg/config"
	"github.com/OpenTraceLab/kiwire/pkg/editor"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kiwire/pkg/route"
)

var (
	// Global flags
	verbose    bool
	configURL  string
	gridFlag   float64
	tolFlag    float64
	strategy   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "kiwire",
	Short: "Pin geometry, wire routing and connectivity checks for KiCad schematics",
	Long: `kiwire works on KiCad schematic sheets (.kicad_sch). It resolves pin
positions of placed symbols, routes orthogonal wires between pins, adds the
junctions those wires need and reports connectivity defects.

Endpoints are written as REF.PIN or REF:PIN (a pin number or a unique pin
name) or as a literal point "(x, y)" in millimetres.

Examples:
  kiwire info board.kicad_sch                      # Sheet summary
  kiwire pins board.kicad_sch U1                   # Resolved pins of U1
  kiwire route board.kicad_sch R1.2 U1:VCC         # Preview a route
  kiwire connect board.kicad_sch R1.2 U1:VCC -o out.kicad_sch
  kiwire check board.kicad_sch --json              # Connectivity report
  kiwire same-net board.kicad_sch R1.1 R2.1`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.StringVarP(&configURL, "config", "c", "", "YAML config file (path or afs URL)")
	flags.Float64Var(&gridFlag, "grid", 0, "corner snapping grid in mm (overrides config)")
	flags.Float64Var(&tolFlag, "tolerance", 0, "coincidence tolerance in mm (overrides config)")
	flags.StringVar(&strategy, "strategy", "", "routing strategy: auto, direct, hfirst or vfirst (overrides config)")
	flags.BoolVar(&jsonOutput, "json", false, "JSON output")
}

// loadConfig reads --config and applies flag overrides.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configURL != "" {
		var err error
		if cfg, err = config.Load(ctx, configURL); err != nil {
			return nil, err
		}
	}
	if gridFlag != 0 {
		cfg.GridSpacing = gridFlag
	}
	if tolFlag != 0 {
		cfg.Tolerance = tolFlag
	}
	if strategy != "" {
		s, err := route.ParseStrategy(strategy)
		if err != nil {
			return nil, err
		}
		cfg.Strategy = s
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := cfg.Level()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openEditor loads a schematic and binds it to its embedded library.
func openEditor(cmd *cobra.Command, location string) (*editor.Editor, *config.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	sch, err := schematic.Load(ctx, location)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing schematic: %w", err)
	}
	ed, err := editor.New(sch, schematic.NewLibrary(sch), cfg, newLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return ed, cfg, nil
}
