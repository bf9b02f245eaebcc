package netgraph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/pins"
	"github.com/OpenTraceLab/kiwire/pkg/route"
)

func findings(r Report, kind FindingKind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestValidatePins(t *testing.T) {
	nc := pin("U1", "5", 100, 100)
	nc.ElectricalType = pins.ElectricalNoConnect

	g := build(t, Snapshot{
		Pins: []pins.Resolved{
			pin("R1", "1", 0, 0), pin("R1", "2", 0, 10),
			pin("R2", "1", 20, 0), pin("R2", "2", 20, 10),
			pin("R3", "1", 40, 0), pin("R3", "2", 40, 10),
			nc,
			pin("R4", "1", 60, 0), pin("R4", "2", 60, 10),
		},
		Wires:      []Wire{wire("w1", 20, 0, 40, 0, 40, 10), wire("w2", 60, 0, 60, -10)},
		Labels:     []Label{{ID: "l", Text: "X", Position: geom.Pt(20, 10)}},
		NoConnects: []geom.Point{geom.Pt(60, 10)},
	})

	r := g.Validate()
	unconnected := findings(r, UnconnectedPin)
	require.Len(t, unconnected, 2)
	assert.Equal(t, "R1", unconnected[0].Component)
	assert.Equal(t, "1", unconnected[0].Pin)
	assert.Equal(t, "R1", unconnected[1].Component)
	assert.Equal(t, "2", unconnected[1].Pin)

	floating := findings(r, FloatingComponent)
	require.Len(t, floating, 1)
	assert.Equal(t, "R1", floating[0].Component)

	assert.False(t, r.HasErrors())
}

func TestValidateStackedPinsAreConnected(t *testing.T) {
	g := build(t, Snapshot{
		Pins: []pins.Resolved{pin("R1", "1", 0, 0), pin("R2", "1", 0, 0)},
	})
	assert.Empty(t, findings(g.Validate(), UnconnectedPin))
}

func TestValidateMissingJunction(t *testing.T) {
	testCases := []struct {
		description string
		wires       []Wire
		junctions   []Junction
		want        []geom.Point
	}{
		{
			description: "tee",
			wires:       []Wire{wire("bus", 0, 0, 20, 0), wire("stub", 10, 0, 10, 10)},
			want:        []geom.Point{geom.Pt(10, 0)},
		},
		{
			description: "crossing",
			wires:       []Wire{wire("h", 0, 5, 10, 5), wire("v", 5, 0, 5, 10)},
			want:        []geom.Point{geom.Pt(5, 5)},
		},
		{
			description: "three ends meet",
			wires:       []Wire{wire("a", 0, 0, 10, 0), wire("b", 10, 0, 20, 0), wire("c", 10, 0, 10, 10)},
			want:        []geom.Point{geom.Pt(10, 0)},
		},
		{
			description: "corner meeting",
			wires:       []Wire{wire("a", 0, 0, 10, 0), wire("b", 10, 0, 10, 10)},
		},
		{
			description: "junction present",
			wires:       []Wire{wire("h", 0, 5, 10, 5), wire("v", 5, 0, 5, 10), wire("bus", 0, 20, 20, 20), wire("stub", 10, 20, 10, 30)},
			junctions:   []Junction{{ID: "j1", Position: geom.Pt(5, 5)}, {ID: "j2", Position: geom.Pt(10, 20)}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			g := build(t, Snapshot{Wires: tc.wires, Junctions: tc.junctions})
			r := g.Validate()
			got := findings(r, MissingJunction)
			require.Len(t, got, len(tc.want))
			for i, w := range tc.want {
				assert.True(t, got[i].Position.Near(w, geom.DefaultTolerance), "got %v", got[i].Position)
				assert.Equal(t, SeverityError, got[i].Severity)
				assert.GreaterOrEqual(t, len(got[i].WireIDs), 2)
			}
			assert.Equal(t, len(tc.want) > 0, r.HasErrors())
		})
	}
}

func TestValidateOverlappingWires(t *testing.T) {
	g := build(t, Snapshot{
		Wires: []Wire{wire("a", 0, 0, 20, 0), wire("b", 10, 0, 30, 0), wire("c", 0, 10, 10, 10), wire("d", 10, 10, 20, 10)},
	})
	got := findings(g.Validate(), OverlappingWires)
	require.Len(t, got, 1, "end to end wires do not overlap")
	assert.Equal(t, []string{"a", "b"}, got[0].WireIDs)
	assert.Equal(t, geom.Pt(10, 0), got[0].Position)

	g.AddJunction(Junction{ID: "j", Position: geom.Pt(10, 0)})
	assert.Empty(t, findings(g.Validate(), OverlappingWires))
}

func TestReportOrderAndJSON(t *testing.T) {
	g := build(t, Snapshot{
		Pins:  []pins.Resolved{pin("R9", "1", 50, 50), pin("R1", "1", 5, 5)},
		Wires: []Wire{wire("h", 0, 5, 10, 5), wire("v", 5, 0, 5, 10)},
	})
	r := g.Validate()

	// R1.1 sits on both wires and counts as connected; R9 yields two
	// findings at the same position, ordered by kind
	require.Len(t, r.Findings, 3)
	assert.Equal(t, MissingJunction, r.Findings[0].Kind)
	assert.Equal(t, UnconnectedPin, r.Findings[1].Kind)
	assert.Equal(t, FloatingComponent, r.Findings[2].Kind)
	assert.Equal(t, "R9", r.Findings[1].Component)
	assert.Equal(t, 1, r.Count(MissingJunction))

	data, err := r.JSON()
	require.NoError(t, err)
	var decoded struct {
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
		Findings []struct {
			Kind     string `json:"kind"`
			Severity string `json:"severity"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 1, decoded.Errors)
	assert.Equal(t, 2, decoded.Warnings)
	assert.Equal(t, "missing_junction", decoded.Findings[0].Kind)
	assert.Equal(t, "error", decoded.Findings[0].Severity)
}

// TestRoutedScenario places two resistors about 50 mm apart, wires them
// with an automatic route and then runs a third wire through the route's
// corner.
func TestRoutedScenario(t *testing.T) {
	defs := []pins.Definition{
		{Number: "1", Name: "~", ElectricalType: "passive", Position: geom.Pt(0, 3.81), Orientation: pins.Down},
		{Number: "2", Name: "~", ElectricalType: "passive", Position: geom.Pt(0, -3.81), Orientation: pins.Up},
	}
	resolver := pins.NewResolver(nil)
	r1, err := resolver.ResolvePins("R1", pins.Placement{LibID: "Device:R", Position: geom.Pt(101.6, 101.6)}, defs)
	require.NoError(t, err)
	r2, err := resolver.ResolvePins("R2", pins.Placement{LibID: "Device:R", Position: geom.Pt(152.4, 121.92), Rotation: 90}, defs)
	require.NoError(t, err)

	router, err := route.NewRouter(geom.GridDefault, geom.DefaultTolerance, nil)
	require.NoError(t, err)
	start, err := pins.Find("R1", r1, "2")
	require.NoError(t, err)
	end, err := pins.Find("R2", r2, "1")
	require.NoError(t, err)
	path, err := router.Route(start.Position, end.Position, route.Auto)
	require.NoError(t, err)
	require.Len(t, path, 3)

	g, err := New(DefaultOptions())
	require.NoError(t, err)
	for _, p := range append(r1, r2...) {
		require.NoError(t, g.AddPin(p))
	}
	g.AddWire(Wire{ID: "route", Points: path})

	connected, err := g.SameNet(start.Key(), end.Key())
	require.NoError(t, err)
	assert.True(t, connected)

	r := g.Validate()
	for _, f := range findings(r, UnconnectedPin) {
		assert.NotEqual(t, start.Key(), pins.Key{Component: f.Component, Number: f.Pin})
		assert.NotEqual(t, end.Key(), pins.Key{Component: f.Component, Number: f.Pin})
	}
	assert.Empty(t, findings(r, MissingJunction))

	corner := path[1]
	g.AddWire(wire("cross", corner.X+10, corner.Y, corner.X, corner.Y, corner.X, corner.Y-10))
	r = g.Validate()
	missing := findings(r, MissingJunction)
	require.Len(t, missing, 1)
	assert.True(t, missing[0].Position.Near(corner, geom.DefaultTolerance))
}
