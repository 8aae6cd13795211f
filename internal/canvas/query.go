package canvas

import "github.com/geoconsole/spatial-canvas/internal/model"

// Region queries evaluate Point features only; line and polygon
// geometry is never tested for intersection. Results preserve
// collection order, and layer visibility does not narrow the scope --
// visibility is a render-time concern.

// BBoxQuery returns Point features inside the rectangle, inclusive on
// all sides.
func BBoxQuery(features []model.Feature, rect model.BBox) []model.Feature {
	out := []model.Feature{}
	for _, f := range features {
		if f.Geom.Kind != model.KindPoint {
			continue
		}
		if rect.Contains(f.Geom.Point) {
			out = append(out, f)
		}
	}
	return out
}

// RadiusQuery returns Point features within radius of center,
// inclusive.
func RadiusQuery(features []model.Feature, center model.Coordinate, radius float64) []model.Feature {
	out := []model.Feature{}
	for _, f := range features {
		if f.Geom.Kind != model.KindPoint {
			continue
		}
		if f.Geom.Point.Dist(center) <= radius {
			out = append(out, f)
		}
	}
	return out
}

// Evaluate dispatches a validated query request. Unsupported modes
// yield an empty result set, not an error.
func Evaluate(features []model.Feature, q model.QueryRequest) []model.Feature {
	switch q.Mode {
	case model.ModeBBox:
		if q.Rect == nil {
			return []model.Feature{}
		}
		return BBoxQuery(features, *q.Rect)
	case model.ModeRadius:
		if q.Center == nil {
			return []model.Feature{}
		}
		return RadiusQuery(features, *q.Center, q.Radius)
	default:
		return []model.Feature{}
	}
}
