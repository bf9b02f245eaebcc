// Package sexp holds navigation and typed extraction helpers over parsed
// KiCad S-expressions. Coordinates in schematic files are millimetres.
package sexp

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/kiwire/pkg/geom"
	"github.com/OpenTraceLab/kiwire/pkg/kicad/sexp/kicadsexp"
)

// S-expression navigation helpers

// FindNode searches for a child node with the given key (first symbol)
// Example: FindNode(sexp, "at") finds (at 100 50) in a list
func FindNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range items(s) {
		if item.IsLeaf() {
			if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == key {
				return item, true
			}
			continue
		}
		if kicadsexp.Key(item) == key {
			return item, true
		}
	}
	return nil, false
}

// FindAllNodes finds all child lists with the given key
func FindAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range items(s) {
		if !item.IsLeaf() && kicadsexp.Key(item) == key {
			results = append(results, item)
		}
	}
	return results
}

// GetListItems returns all items in a list (excluding the first symbol/key)
// Example: GetListItems((pts (xy 0 0) (xy 1 0))) returns the two xy nodes
func GetListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	all := items(s)
	if len(all) <= 1 {
		return nil
	}
	return all[1:]
}

func items(s kicadsexp.Sexp) []kicadsexp.Sexp {
	l, ok := s.(*kicadsexp.List)
	if !ok || l == nil {
		return nil
	}
	return l.Elements()
}

// Typed value extraction helpers

// GetString extracts an atom at the given index in a list, quoted or not.
// Index 0 is the key, 1 is first value, etc.
func GetString(s kicadsexp.Sexp, index int) (string, error) {
	if s == nil || s.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}
	all := items(s)
	if index < 0 || index >= len(all) {
		return "", fmt.Errorf("%s: index %d out of bounds (length %d)", describe(s), index, len(all))
	}
	switch v := all[index].(type) {
	case kicadsexp.Symbol:
		return string(v), nil
	case kicadsexp.Quoted:
		return string(v), nil
	}
	return "", fmt.Errorf("%s: expected atom at index %d, got list", describe(s), index)
}

// GetQuotedString is GetString restricted to quoted atoms.
func GetQuotedString(s kicadsexp.Sexp, index int) (string, error) {
	all := items(s)
	if index < 0 || index >= len(all) {
		return "", fmt.Errorf("%s: index %d out of bounds (length %d)", describe(s), index, len(all))
	}
	q, ok := all[index].(kicadsexp.Quoted)
	if !ok {
		return "", fmt.Errorf("%s: expected quoted string at index %d", describe(s), index)
	}
	return string(q), nil
}

// GetFloat extracts a float64 value at the given index
func GetFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to parse float %q: %w", describe(s), str, err)
	}
	return val, nil
}

// GetInt extracts an int value at the given index
func GetInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to parse int %q: %w", describe(s), str, err)
	}
	return val, nil
}

// Domain-specific extraction helpers

// GetPoint extracts X,Y from a (keyword X Y ...) node such as (xy X Y),
// (at X Y) or (start X Y).
func GetPoint(s kicadsexp.Sexp) (geom.Point, error) {
	x, err := GetFloat(s, 1)
	if err != nil {
		return geom.Point{}, fmt.Errorf("failed to parse X: %w", err)
	}
	y, err := GetFloat(s, 2)
	if err != nil {
		return geom.Point{}, fmt.Errorf("failed to parse Y: %w", err)
	}
	return geom.Pt(x, y), nil
}

// GetAt extracts position and optional angle in degrees from an
// (at X Y [angle]) node.
func GetAt(s kicadsexp.Sexp) (geom.Point, float64, error) {
	if key := kicadsexp.Key(s); key != "at" {
		return geom.Point{}, 0, fmt.Errorf("%s: expected 'at', got %q", describe(s), key)
	}
	p, err := GetPoint(s)
	if err != nil {
		return geom.Point{}, 0, err
	}
	var angle float64
	if s.LeafCount() > 3 {
		if angle, err = GetFloat(s, 3); err != nil {
			return geom.Point{}, 0, err
		}
	}
	return p, angle, nil
}

// GetChildAt finds the (at ...) child of s.
func GetChildAt(s kicadsexp.Sexp) (geom.Point, float64, error) {
	at, ok := FindNode(s, "at")
	if !ok || at.IsLeaf() {
		return geom.Point{}, 0, fmt.Errorf("%s: missing position", describe(s))
	}
	return GetAt(at)
}

// GetPoints extracts every (xy X Y) child of a (pts ...) node.
func GetPoints(s kicadsexp.Sexp) ([]geom.Point, error) {
	var points []geom.Point
	for _, xy := range FindAllNodes(s, "xy") {
		p, err := GetPoint(xy)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

// HasSymbol checks if a list contains a specific bare symbol
// Example: HasSymbol((pin passive line (hide)), "hide")
func HasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range items(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// GetNodeName returns the first symbol of a list (the node type)
func GetNodeName(s kicadsexp.Sexp) (string, error) {
	if key := kicadsexp.Key(s); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("expected list with leading symbol")
}

// GetUUID extracts the value of a (uuid ...) child, or "" if there is none.
func GetUUID(s kicadsexp.Sexp) string {
	node, ok := FindNode(s, "uuid")
	if !ok {
		return ""
	}
	id, err := GetString(node, 1)
	if err != nil {
		return ""
	}
	return id
}

// GetChildString returns the first value of the (key value) child.
func GetChildString(s kicadsexp.Sexp, key string) (string, bool) {
	node, ok := FindNode(s, key)
	if !ok || node.IsLeaf() {
		return "", false
	}
	v, err := GetString(node, 1)
	if err != nil {
		return "", false
	}
	return v, true
}

func describe(s kicadsexp.Sexp) string {
	if l, ok := s.(*kicadsexp.List); ok && l.Line > 0 {
		return fmt.Sprintf("line %d: (%s)", l.Line, kicadsexp.Key(s))
	}
	return fmt.Sprintf("(%s)", kicadsexp.Key(s))
}
