package netgraph

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/junction"
	"github.com/OpenTraceLab/kiwire/pkg/pins"
)

// Kind tags the entities held by the graph.
type Kind int

const (
	KindPin Kind = iota
	KindWire
	KindJunction
	KindLabel
)

func (k Kind) String() string {
	switch k {
	case KindPin:
		return "pin"
	case KindWire:
		return "wire"
	case KindJunction:
		return "junction"
	case KindLabel:
		return "label"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// LabelKind distinguishes net labels by scope.
type LabelKind int

const (
	LabelLocal LabelKind = iota
	LabelGlobal
	LabelHierarchical
)

func (k LabelKind) String() string {
	switch k {
	case LabelLocal:
		return "local"
	case LabelGlobal:
		return "global"
	case LabelHierarchical:
		return "hierarchical"
	}
	return fmt.Sprintf("LabelKind(%d)", int(k))
}

// ParseLabelKind accepts the String forms and the KiCad record names
// (label, global_label, hierarchical_label).
func ParseLabelKind(s string) (LabelKind, error) {
	switch strings.ToLower(s) {
	case "local", "label":
		return LabelLocal, nil
	case "global", "global_label":
		return LabelGlobal, nil
	case "hierarchical", "hierarchical_label":
		return LabelHierarchical, nil
	}
	return LabelLocal, fmt.Errorf("netgraph: unknown label kind %q", s)
}

// Wire is an ordered point list with a stable identifier.
type Wire = junction.Wire

// Junction is a junction marker on the sheet.
type Junction struct {
	ID       string
	Position geom.Point
}

// Label is a net label.
type Label struct {
	ID       string
	Text     string
	Kind     LabelKind
	Position geom.Point
}

// PinAnchor is a further position of a pin already in the graph, as for a
// pin common to all units of a part that is drawn on every placed unit.
type PinAnchor struct {
	Key      pins.Key
	Position geom.Point
}

// Snapshot is the read view of a sheet the graph is built from.
// NoConnects are the positions of no-connect markers.
type Snapshot struct {
	Pins       []pins.Resolved
	PinAnchors []PinAnchor
	Wires      []Wire
	Junctions  []Junction
	Labels     []Label
	NoConnects []geom.Point
}

// Options controls how the graph joins entities.
type Options struct {
	// Tolerance is the distance within which positions coincide.
	Tolerance float64
	// SegmentCell is the bucket size of the spatial indexes.
	SegmentCell float64
	// MergeLabelsByName joins local and global labels sharing a text.
	// Hierarchical labels are never joined by name.
	MergeLabelsByName bool
	Logger            *slog.Logger
}

// DefaultOptions returns the options used by Build when none are given.
func DefaultOptions() Options {
	return Options{
		Tolerance:         geom.DefaultTolerance,
		SegmentCell:       geom.GridStandard,
		MergeLabelsByName: true,
	}
}

// node is one union-find member: a tagged reference into the graph's
// entity slices.
type node struct {
	kind  Kind
	index int
}
