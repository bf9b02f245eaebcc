package editor

import (
	"fmt"
	"log/slog"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/junction"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/schematic"
	"github.com/OpenTraceLab/kiwire/pkg/netgraph"
	"github.com/OpenTraceLab/kiwire/pkg/pinref"
	"github.com/OpenTraceLab/kiwire/pkg/pins"
	"github.com/OpenTraceLab/kiwire/pkg/route"
)

// Connection is the outcome of Connect: the wire that was added and the
// junctions it required.
type Connection struct {
	Path      route.Path
	Wire      schematic.Wire
	Junctions []schematic.Junction
}

// Endpoint resolves an endpoint written as "R1.2", "U3:VCC" or
// "(10.16, -5.08)" to a drawing position.
func (e *Editor) Endpoint(s string) (geom.Point, error) {
	ep, err := pinref.Parse(s)
	if err != nil {
		return geom.Point{}, err
	}
	if ep.IsPoint() {
		return ep.Position(), nil
	}
	p, err := e.Pin(ep.Pin.Ref, ep.Pin.Pin)
	if err != nil {
		return geom.Point{}, err
	}
	return p.Position, nil
}

func (e *Editor) pinByRef(s string) (pins.Resolved, error) {
	ep, err := pinref.Parse(s)
	if err != nil {
		return pins.Resolved{}, err
	}
	if ep.IsPoint() {
		return pins.Resolved{}, fmt.Errorf("editor: %s is a point, not a pin", ep)
	}
	return e.Pin(ep.Pin.Ref, ep.Pin.Pin)
}

// Route computes the path between two endpoints without changing the sheet.
func (e *Editor) Route(from, to string, strategy route.Strategy) (route.Path, error) {
	start, err := e.Endpoint(from)
	if err != nil {
		return nil, err
	}
	end, err := e.Endpoint(to)
	if err != nil {
		return nil, err
	}
	return e.router.Route(start, end, strategy)
}

// Junctions returns the junctions a new path would need against the
// current wires: true crossings plus tees.
func (e *Editor) Junctions(path route.Path) ([]geom.Point, error) {
	var segments []junction.WireSegment
	for _, w := range e.sch.Wires {
		segments = append(segments, junction.SegmentsOf(w.UUID, w.Points)...)
	}
	existing := make([]junction.Junction, len(e.sch.Junctions))
	for i, j := range e.sch.Junctions {
		existing[i] = junction.Junction{Position: j.Position}
	}
	d, err := junction.NewDetector(segments, existing, e.cfg.Tolerance, e.cfg.SegmentCell)
	if err != nil {
		return nil, err
	}
	required := d.Required(path)
	out := make([]geom.Point, len(required))
	for i, j := range required {
		out[i] = j.Position
	}
	return out, nil
}

// Connect routes between two endpoints, appends the wire and any required
// junctions to the schematic and updates the connectivity graph
// incrementally.
func (e *Editor) Connect(from, to string, strategy route.Strategy) (*Connection, error) {
	path, err := e.Route(from, to, strategy)
	if err != nil {
		return nil, err
	}
	if path.IsDegenerate(e.cfg.Tolerance) {
		return nil, fmt.Errorf("editor: %s and %s are at the same position", from, to)
	}
	points, err := e.Junctions(path)
	if err != nil {
		return nil, err
	}

	w, err := e.sch.AddWire(path)
	if err != nil {
		return nil, err
	}
	conn := &Connection{Path: path, Wire: w}
	e.graph.AddWire(netgraph.Wire{ID: w.UUID, Points: w.Points})
	for _, p := range points {
		j := e.sch.AddJunction(p)
		conn.Junctions = append(conn.Junctions, j)
		e.graph.AddJunction(netgraph.Junction{ID: j.UUID, Position: j.Position})
	}

	e.log.Debug("connected",
		slog.String("from", from),
		slog.String("to", to),
		slog.String("strategy", strategy.String()),
		slog.Int("points", len(path)),
		slog.Int("junctions", len(conn.Junctions)))
	return conn, nil
}
