// Package model defines core domain types shared across the service.
package model

import (
	"errors"
	"fmt"
	"math"
)

// Coordinate is a position in canvas space (or lon/lat when the
// collection is declared geographic).
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (c Coordinate) Dist(o Coordinate) float64 {
	dx := c.X - o.X
	dy := c.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

type GeometryKind string

const (
	KindPoint      GeometryKind = "Point"
	KindLineString GeometryKind = "LineString"
	KindPolygon    GeometryKind = "Polygon"
)

// Geometry carries exactly one payload, selected by Kind.
type Geometry struct {
	Kind  GeometryKind   `json:"kind"`
	Point Coordinate     `json:"point,omitempty"`
	Line  []Coordinate   `json:"line,omitempty"`
	Rings [][]Coordinate `json:"rings,omitempty"`
}

// Validate checks that the payload shape matches the declared kind.
func (g Geometry) Validate() error {
	switch g.Kind {
	case KindPoint:
		if len(g.Line) != 0 || len(g.Rings) != 0 {
			return errors.New("point geometry carries line or ring payload")
		}
	case KindLineString:
		if len(g.Line) < 2 {
			return fmt.Errorf("linestring needs >= 2 vertices, got %d", len(g.Line))
		}
		if len(g.Rings) != 0 {
			return errors.New("linestring geometry carries ring payload")
		}
	case KindPolygon:
		if len(g.Rings) == 0 {
			return errors.New("polygon needs at least one ring")
		}
		for i, ring := range g.Rings {
			if len(ring) < 3 {
				return fmt.Errorf("polygon ring %d needs >= 3 vertices, got %d", i, len(ring))
			}
		}
		if len(g.Line) != 0 {
			return errors.New("polygon geometry carries line payload")
		}
	default:
		return fmt.Errorf("unknown geometry kind %q", g.Kind)
	}
	return nil
}

// Bounds returns the axis-aligned bounds of the geometry, already
// normalized.
func (g Geometry) Bounds() BBox {
	switch g.Kind {
	case KindPoint:
		return BBox{X1: g.Point.X, Y1: g.Point.Y, X2: g.Point.X, Y2: g.Point.Y}
	case KindLineString:
		return coordBounds(g.Line)
	case KindPolygon:
		var b BBox
		for i, ring := range g.Rings {
			rb := coordBounds(ring)
			if i == 0 {
				b = rb
				continue
			}
			b.X1 = math.Min(b.X1, rb.X1)
			b.Y1 = math.Min(b.Y1, rb.Y1)
			b.X2 = math.Max(b.X2, rb.X2)
			b.Y2 = math.Max(b.Y2, rb.Y2)
		}
		return b
	}
	return BBox{}
}

func coordBounds(cs []Coordinate) BBox {
	if len(cs) == 0 {
		return BBox{}
	}
	b := BBox{X1: cs[0].X, Y1: cs[0].Y, X2: cs[0].X, Y2: cs[0].Y}
	for _, c := range cs[1:] {
		b.X1 = math.Min(b.X1, c.X)
		b.Y1 = math.Min(b.Y1, c.Y)
		b.X2 = math.Max(b.X2, c.X)
		b.Y2 = math.Max(b.Y2, c.Y)
	}
	return b
}

// Feature is a single entity on the canvas. Features are read-only
// inside the engine; mutation happens only through the store.
type Feature struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Layer string         `json:"layer"`
	Geom  Geometry       `json:"geometry"`
	Props map[string]any `json:"properties,omitempty"`
}

func (f Feature) Validate() error {
	if f.ID == "" {
		return errors.New("feature id is required")
	}
	if err := f.Geom.Validate(); err != nil {
		return fmt.Errorf("feature %s: %w", f.ID, err)
	}
	return nil
}

// Layer groups features sharing a geometry kind. Count is advisory
// display metadata and must be recomputed from the collection.
type Layer struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Kind    GeometryKind `json:"kind"`
	Visible bool         `json:"visible"`
	Color   string       `json:"color"`
	Count   int          `json:"count"`
}

// BBox is an axis-aligned rectangle. X1,Y1 and X2,Y2 are opposite
// corners in any order; Normalize puts min in X1,Y1.
type BBox struct {
	X1, Y1 float64
	X2, Y2 float64
}

func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.X1, b.Y1, b.X2, b.Y2)
}

func (b BBox) Normalize() BBox {
	n := b
	if n.X1 > n.X2 {
		n.X1, n.X2 = n.X2, n.X1
	}
	if n.Y1 > n.Y2 {
		n.Y1, n.Y2 = n.Y2, n.Y1
	}
	return n
}

// Contains reports whether c lies inside the normalized rectangle,
// inclusive on all sides.
func (b BBox) Contains(c Coordinate) bool {
	n := b.Normalize()
	return c.X >= n.X1 && c.X <= n.X2 && c.Y >= n.Y1 && c.Y <= n.Y2
}

// Mode is the canvas drawing mode.
type Mode string

const (
	ModeSelect  Mode = "select"
	ModeBBox    Mode = "bbox"
	ModeRadius  Mode = "radius"
	ModePolygon Mode = "polygon"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSelect, ModeBBox, ModeRadius, ModePolygon:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown canvas mode %q", s)
}

// QueryRequest is a validated region query. Exactly one of Rect or
// Center/Radius is set, selected by Mode.
type QueryRequest struct {
	Mode   Mode
	Rect   *BBox
	Center *Coordinate
	Radius float64
}

// RoutePath is an ordered sequence of coordinates; nil means no route
// has been computed.
type RoutePath []Coordinate

type Cells []string
