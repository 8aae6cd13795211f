package canvas

import "github.com/geoconsole/spatial-canvas/internal/model"

// HitTest resolves a click to the first Point feature, in collection
// order, within tolerance of the click coordinate. Non-Point features
// are never hit-testable. Overlapping points resolve to whichever
// appears first; that tie-break is defined behavior.
func HitTest(features []model.Feature, at model.Coordinate, tolerance float64) (model.Feature, bool) {
	for _, f := range features {
		if f.Geom.Kind != model.KindPoint {
			continue
		}
		if f.Geom.Point.Dist(at) <= tolerance {
			return f, true
		}
	}
	return model.Feature{}, false
}
