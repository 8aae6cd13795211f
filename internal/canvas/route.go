package canvas

import "github.com/geoconsole/spatial-canvas/internal/model"

// Route produces the straight two-point path between two Point
// features. This is deliberately not a shortest-path computation; the
// console labels the output as a straight line. If either id is
// missing or resolves to a non-Point feature, no path is produced.
func Route(features []model.Feature, fromID, toID string) model.RoutePath {
	from, ok := findPoint(features, fromID)
	if !ok {
		return nil
	}
	to, ok := findPoint(features, toID)
	if !ok {
		return nil
	}
	return model.RoutePath{from, to}
}

func findPoint(features []model.Feature, id string) (model.Coordinate, bool) {
	for _, f := range features {
		if f.ID == id {
			if f.Geom.Kind != model.KindPoint {
				return model.Coordinate{}, false
			}
			return f.Geom.Point, true
		}
	}
	return model.Coordinate{}, false
}
