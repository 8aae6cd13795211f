// Package geojson converts between GeoJSON FeatureCollections and the
// internal feature model.
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

type rawCollection struct {
	Type     string       `json:"type"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   rawGeometry    `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Decode parses a GeoJSON FeatureCollection. Feature ids come from the
// top-level "id" member or, failing that, an "id" property; the owning
// layer from the "layer" property; the display name from "name".
func Decode(data []byte) ([]model.Feature, error) {
	var fc rawCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf(`unsupported GeoJSON "type": %q (must be FeatureCollection)`, fc.Type)
	}

	out := make([]model.Feature, 0, len(fc.Features))
	for i, rf := range fc.Features {
		f, err := decodeFeature(rf)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func decodeFeature(rf rawFeature) (model.Feature, error) {
	if rf.Type != "Feature" {
		return model.Feature{}, fmt.Errorf(`unsupported feature "type": %q`, rf.Type)
	}

	geom, err := decodeGeometry(rf.Geometry)
	if err != nil {
		return model.Feature{}, err
	}

	f := model.Feature{
		ID:    stringID(rf.ID),
		Geom:  geom,
		Props: rf.Properties,
	}
	if f.ID == "" {
		f.ID = stringID(rf.Properties["id"])
	}
	if s, ok := rf.Properties["name"].(string); ok {
		f.Name = s
	}
	if s, ok := rf.Properties["layer"].(string); ok {
		f.Layer = s
	}
	if err := f.Validate(); err != nil {
		return model.Feature{}, err
	}
	return f, nil
}

func decodeGeometry(rg rawGeometry) (model.Geometry, error) {
	switch rg.Type {
	case "Point":
		var xy []float64
		if err := json.Unmarshal(rg.Coordinates, &xy); err != nil {
			return model.Geometry{}, fmt.Errorf("parse point coords: %w", err)
		}
		c, err := toCoord(xy)
		if err != nil {
			return model.Geometry{}, err
		}
		return model.Geometry{Kind: model.KindPoint, Point: c}, nil

	case "LineString":
		var pts [][]float64
		if err := json.Unmarshal(rg.Coordinates, &pts); err != nil {
			return model.Geometry{}, fmt.Errorf("parse linestring coords: %w", err)
		}
		line, err := toCoords(pts)
		if err != nil {
			return model.Geometry{}, err
		}
		return model.Geometry{Kind: model.KindLineString, Line: line}, nil

	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(rg.Coordinates, &rings); err != nil {
			return model.Geometry{}, fmt.Errorf("parse polygon coords: %w", err)
		}
		if len(rings) == 0 {
			return model.Geometry{}, errors.New("empty polygon")
		}
		out := make([][]model.Coordinate, 0, len(rings))
		for i, ring := range rings {
			r, err := toCoords(ring)
			if err != nil {
				return model.Geometry{}, fmt.Errorf("ring %d: %w", i, err)
			}
			// drop duplicated closing vertex if present
			if len(r) >= 2 && r[0] == r[len(r)-1] {
				r = r[:len(r)-1]
			}
			out = append(out, r)
		}
		return model.Geometry{Kind: model.KindPolygon, Rings: out}, nil

	default:
		return model.Geometry{}, fmt.Errorf("unsupported geometry type: %q", rg.Type)
	}
}

func toCoord(xy []float64) (model.Coordinate, error) {
	if len(xy) < 2 {
		return model.Coordinate{}, fmt.Errorf("coordinate needs 2 values, got %d", len(xy))
	}
	return model.Coordinate{X: xy[0], Y: xy[1]}, nil
}

func toCoords(pts [][]float64) ([]model.Coordinate, error) {
	out := make([]model.Coordinate, 0, len(pts))
	for _, xy := range pts {
		c, err := toCoord(xy)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func stringID(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return ""
	}
}

// Merge folds src into dst by feature id: existing ids are replaced in
// place, new ids are appended. Collection order of dst is preserved.
func Merge(dst, src []model.Feature) []model.Feature {
	idx := make(map[string]int, len(dst))
	for i, f := range dst {
		idx[f.ID] = i
	}
	for _, f := range src {
		if i, ok := idx[f.ID]; ok {
			dst[i] = f
			continue
		}
		idx[f.ID] = len(dst)
		dst = append(dst, f)
	}
	return dst
}

// Encode renders features as a GeoJSON FeatureCollection.
func Encode(features []model.Feature) ([]byte, error) {
	fc := struct {
		Type     string       `json:"type"`
		Features []rawFeature `json:"features"`
	}{Type: "FeatureCollection", Features: make([]rawFeature, 0, len(features))}

	for _, f := range features {
		rg, err := encodeGeometry(f.Geom)
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.ID, err)
		}
		props := make(map[string]any, len(f.Props)+2)
		for k, v := range f.Props {
			props[k] = v
		}
		if f.Name != "" {
			props["name"] = f.Name
		}
		if f.Layer != "" {
			props["layer"] = f.Layer
		}
		fc.Features = append(fc.Features, rawFeature{
			Type:       "Feature",
			ID:         f.ID,
			Geometry:   rg,
			Properties: props,
		})
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

func encodeGeometry(g model.Geometry) (rawGeometry, error) {
	switch g.Kind {
	case model.KindPoint:
		coords, _ := json.Marshal([]float64{g.Point.X, g.Point.Y})
		return rawGeometry{Type: "Point", Coordinates: coords}, nil
	case model.KindLineString:
		coords, _ := json.Marshal(fromCoords(g.Line))
		return rawGeometry{Type: "LineString", Coordinates: coords}, nil
	case model.KindPolygon:
		rings := make([][][]float64, 0, len(g.Rings))
		for _, ring := range g.Rings {
			r := fromCoords(ring)
			// close the ring on output
			if len(r) > 0 {
				r = append(r, r[0])
			}
			rings = append(rings, r)
		}
		coords, _ := json.Marshal(rings)
		return rawGeometry{Type: "Polygon", Coordinates: coords}, nil
	default:
		return rawGeometry{}, fmt.Errorf("unknown geometry kind %q", g.Kind)
	}
}

func fromCoords(cs []model.Coordinate) [][]float64 {
	out := make([][]float64, 0, len(cs))
	for _, c := range cs {
		out = append(out, []float64{c.X, c.Y})
	}
	return out
}
