package store

import "github.com/geoconsole/spatial-canvas/internal/model"

// SeedFeatures is the demo collection the console ships with.
func SeedFeatures() []model.Feature {
	return []model.Feature{
		{
			ID:    "f1",
			Name:  "City Center",
			Layer: "cities",
			Geom:  model.Geometry{Kind: model.KindPoint, Point: model.Coordinate{X: 400, Y: 300}},
			Props: map[string]any{"population": 150000.0, "type": "city"},
		},
		{
			ID:    "f2",
			Name:  "Downtown District",
			Layer: "districts",
			Geom: model.Geometry{Kind: model.KindPolygon, Rings: [][]model.Coordinate{{
				{X: 350, Y: 250},
				{X: 450, Y: 250},
				{X: 450, Y: 350},
				{X: 350, Y: 350},
			}}},
			Props: map[string]any{"zone": "commercial"},
		},
		{
			ID:    "f3",
			Name:  "Main Street",
			Layer: "roads",
			Geom: model.Geometry{Kind: model.KindLineString, Line: []model.Coordinate{
				{X: 200, Y: 300},
				{X: 400, Y: 300},
				{X: 600, Y: 320},
			}},
			Props: map[string]any{"lanes": 4.0},
		},
		{
			ID:    "f4",
			Name:  "Airport",
			Layer: "cities",
			Geom:  model.Geometry{Kind: model.KindPoint, Point: model.Coordinate{X: 600, Y: 400}},
			Props: map[string]any{"population": 0.0, "type": "infrastructure"},
		},
	}
}

func SeedLayers() []model.Layer {
	return []model.Layer{
		{ID: "cities", Name: "Cities", Kind: model.KindPoint, Visible: true, Color: "#e74c3c"},
		{ID: "roads", Name: "Roads", Kind: model.KindLineString, Visible: true, Color: "#f39c12"},
		{ID: "districts", Name: "Districts", Kind: model.KindPolygon, Visible: true, Color: "#3498db"},
		{ID: "water", Name: "Water Bodies", Kind: model.KindPolygon, Visible: true, Color: "#1abc9c"},
	}
}
