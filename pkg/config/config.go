// Package config holds the tunables shared by the router, the junction
// detector and the connectivity graph.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/netgraph"
	"github.com/OpenTraceLab/kiwire/pkg/route"
)

// Config controls routing and connectivity behaviour.
type Config struct {
	// Routing
	GridSpacing float64        `yaml:"gridSpacing"` // corner snapping grid in mm (default: 1.27)
	Strategy    route.Strategy `yaml:"strategy"`    // auto, direct, hfirst or vfirst (default: auto)

	// Connectivity
	Tolerance         float64 `yaml:"tolerance"`         // coincidence distance in mm (default: 0.01)
	MergeLabelsByName bool    `yaml:"mergeLabelsByName"` // join same-text local/global labels (default: true)
	SegmentCell       float64 `yaml:"segmentCell"`       // spatial bucket size in mm (default: 2.54)

	LogLevel string `yaml:"logLevel"` // debug, info, warn or error (default: info)
}

// DefaultConfig returns a Config with the KiCad-style defaults.
func DefaultConfig() *Config {
	return &Config{
		GridSpacing:       geom.GridDefault,
		Strategy:          route.Auto,
		Tolerance:         geom.DefaultTolerance,
		MergeLabelsByName: true,
		SegmentCell:       geom.GridStandard,
		LogLevel:          "info",
	}
}

// Validate checks the numeric settings. Failures are
// *geom.InvalidConfigurationError values.
func (c *Config) Validate() error {
	if err := geom.CheckSpacing(c.GridSpacing); err != nil {
		return err
	}
	if err := geom.CheckTolerance(c.Tolerance); err != nil {
		return err
	}
	if c.Tolerance >= c.GridSpacing/2 {
		return &geom.InvalidConfigurationError{Field: "tolerance", Value: c.Tolerance}
	}
	if !(c.SegmentCell > 0) {
		return &geom.InvalidConfigurationError{Field: "segment cell", Value: c.SegmentCell}
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a YAML config from any location afs understands: a local
// path, file://, mem:// or a cloud storage URL.
func Load(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", URL, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", URL, err)
	}
	return cfg, nil
}

// Router builds a router from the routing settings.
func (c *Config) Router(logger *slog.Logger) (*route.Router, error) {
	return route.NewRouter(c.GridSpacing, c.Tolerance, logger)
}

// GraphOptions returns the connectivity settings.
func (c *Config) GraphOptions(logger *slog.Logger) netgraph.Options {
	return netgraph.Options{
		Tolerance:         c.Tolerance,
		SegmentCell:       c.SegmentCell,
		MergeLabelsByName: c.MergeLabelsByName,
		Logger:            logger,
	}
}
