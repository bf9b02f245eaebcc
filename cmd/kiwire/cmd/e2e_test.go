package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kiwire/pkg/route"
)

const fixture = "../../../pkg/kicad/schematic/testdata/divider.kicad_sch"

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, configURL, gridFlag, tolFlag, strategy, jsonOutput = false, "", 0, 0, "", false
	outputURL = ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestCommandsE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "info summary",
			args: []string{"info", fixture},
			wantContain: []string{
				"Version: 20231120",
				"Components: 4",
				"R: R1, R2",
				"Junctions: 1",
				"MID",
			},
		},
		{
			name: "info component",
			args: []string{"info", fixture, "U1"},
			wantContain: []string{
				"Library: Test:DualBuffer",
				"Mirror: x",
				"Unit: 2",
				"(165.1, 119.38)",
			},
		},
		{
			name:        "pins",
			args:        []string{"pins", fixture, "R1"},
			wantContain: []string{"PIN", "(101.6, 97.79)", "(101.6, 105.41)"},
		},
		{
			name:    "unknown component",
			args:    []string{"pins", fixture, "Q9"},
			wantErr: true,
		},
		{
			name: "route preview",
			args: []string{"route", fixture, "R2.2", "U1:Y"},
			wantContain: []string{
				"Strategy: hfirst",
				"(165.1, 105.41)",
				"Length: 67.31 mm",
				"Junctions: none",
			},
		},
		{
			name:        "route with strategy flag",
			args:        []string{"route", fixture, "R1.1", "R2.2", "--strategy", "vfirst"},
			wantContain: []string{"Strategy: vfirst", "(101.6, 105.41)"},
		},
		{
			name:        "collapsed route reports direct",
			args:        []string{"route", fixture, "R1.1", "R2.1", "--strategy", "hfirst"},
			wantContain: []string{"Strategy: direct", "Length: 25.4 mm"},
		},
		{
			name:    "bad strategy",
			args:    []string{"route", fixture, "R1.1", "R2.2", "--strategy", "diagonal"},
			wantErr: true,
		},
		{
			name: "check",
			args: []string{"check", fixture},
			wantContain: []string{
				"unconnected_pin",
				"3 unconnected, 1 floating, 0 missing junctions, 0 overlaps",
			},
		},
		{
			name:        "nets",
			args:        []string{"nets", fixture},
			wantContain: []string{"GND", "R1.2"},
		},
		{
			name:        "same net",
			args:        []string{"same-net", fixture, "R1.1", "R2.1"},
			wantContain: []string{"are on the same net"},
		},
		{
			name:        "different nets",
			args:        []string{"same-net", fixture, "R1.2", "R2.2"},
			wantErr:     true,
			wantContain: []string{"are not connected"},
		},
		{
			name:    "missing file",
			args:    []string{"info", "testdata/nope.kicad_sch"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v\noutput:\n%s", err, tt.wantErr, out)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q\noutput:\n%s", want, out)
				}
			}
		})
	}
}

func TestConnectE2E(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.kicad_sch")
	out, err := run(t, "connect", fixture, "R2.2", "U1:Y", "-o", dst)
	if err != nil {
		t.Fatalf("connect: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Wire: ") {
		t.Errorf("output missing wire uuid:\n%s", out)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	sch, err := schematic.Parse(f)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(sch.Wires) != 4 {
		t.Errorf("got %d wires, want 4", len(sch.Wires))
	}

	out, err = run(t, "same-net", dst, "R2.2", "U1.6")
	if err != nil {
		t.Errorf("pins not joined after connect: %v\n%s", err, out)
	}

	if _, err := run(t, "connect", fixture, "R2.2", "U1:Y"); err == nil {
		t.Error("connect without --output should fail")
	}
}

func TestJSONOutput(t *testing.T) {
	out, err := run(t, "check", fixture, "--json")
	if err != nil {
		t.Fatalf("check --json: %v", err)
	}
	var report struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.Errors != 0 || report.Warnings != 4 {
		t.Errorf("errors=%d warnings=%d, want 0 and 4", report.Errors, report.Warnings)
	}

	out, err = run(t, "nets", fixture, "--json")
	if err != nil {
		t.Fatalf("nets --json: %v", err)
	}
	var nets struct {
		NetCount int `json:"net_count"`
	}
	if err := json.Unmarshal([]byte(out), &nets); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if nets.NetCount == 0 {
		t.Error("no nets exported")
	}
}

func TestChosenStrategy(t *testing.T) {
	tests := []struct {
		name string
		path route.Path
		s    route.Strategy
		want route.Strategy
	}{
		{"two points are direct", route.Path{geom.Pt(0, 0), geom.Pt(10, 0)}, route.HFirst, route.Direct},
		{"auto wide", route.Path{geom.Pt(0, 0), geom.Pt(100, 0), geom.Pt(100, 40)}, route.Auto, route.HFirst},
		{"auto tall", route.Path{geom.Pt(0, 0), geom.Pt(0, 100), geom.Pt(40, 100)}, route.Auto, route.VFirst},
		{"explicit", route.Path{geom.Pt(0, 0), geom.Pt(0, 40), geom.Pt(100, 40)}, route.VFirst, route.VFirst},
	}
	for _, tt := range tests {
		if got := chosen(tt.path, tt.s); got != tt.want {
			t.Errorf("%s: chosen = %s, want %s", tt.name, got, tt.want)
		}
	}
}
