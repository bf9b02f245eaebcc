package pins

import (
	"io"
	"log/slog"
	"sort"
)

// Resolver turns placements plus library definitions into absolute pins.
// A Resolver with a nil Cache recomputes every transform; with a cache it
// reuses per-(lib_id, rotation, mirror) offsets. Resolution is otherwise a
// pure function of its inputs.
type Resolver struct {
	Cache  *TransformCache
	Logger *slog.Logger
}

// NewResolver creates a resolver backed by a fresh TransformCache.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{Cache: NewTransformCache(), Logger: logger}
}

// ResolvePins resolves every pin of a component, in definition order.
func (r *Resolver) ResolvePins(ref string, pl Placement, defs []Definition) ([]Resolved, error) {
	t, err := NewTransform(pl.Rotation, pl.Mirror)
	if err != nil {
		return nil, err
	}

	var local []cachedPin
	if r != nil && r.Cache != nil && pl.LibID != "" {
		local = r.Cache.lookup(pl.LibID, t, defs)
	} else {
		local = transformAll(t, defs)
	}

	out := make([]Resolved, len(local))
	for i, cp := range local {
		out[i] = Resolved{
			ComponentRef:   ref,
			Number:         cp.def.Number,
			Name:           cp.def.Name,
			ElectricalType: cp.def.ElectricalType,
			Position:       cp.offset.Add(pl.Position),
			Orientation:    cp.orientation,
		}
	}

	if r != nil && r.Logger != nil {
		r.Logger.Debug("resolved pins",
			slog.String("component", ref),
			slog.String("lib_id", pl.LibID),
			slog.Int("rotation", int(pl.Rotation)),
			slog.String("mirror", pl.Mirror.String()),
			slog.Int("count", len(out)))
	}
	return out, nil
}

// ResolvePin resolves a single pin selected by number, or by name when no
// number matches.
func (r *Resolver) ResolvePin(ref string, pl Placement, defs []Definition, pin string) (Resolved, error) {
	all, err := r.ResolvePins(ref, pl, defs)
	if err != nil {
		return Resolved{}, err
	}
	return Find(ref, all, pin)
}

// Find selects a resolved pin by number, falling back to name.
func Find(ref string, resolved []Resolved, pin string) (Resolved, error) {
	for _, p := range resolved {
		if p.Number == pin {
			return p, nil
		}
	}
	for _, p := range resolved {
		if p.Name == pin && p.Name != "" {
			return p, nil
		}
	}
	return Resolved{}, &PinNotFoundError{Component: ref, Pin: pin, Available: Available(resolved)}
}

// Available lists pin numbers (with names where they differ) for error
// messages, sorted.
func Available(resolved []Resolved) []string {
	out := make([]string, 0, len(resolved))
	for _, p := range resolved {
		s := p.Number
		if p.Name != "" && p.Name != "~" && p.Name != p.Number {
			s += " (" + p.Name + ")"
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
