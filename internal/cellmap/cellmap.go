// Package cellmap maps query regions to cell identifiers. Cells feed
// cache keys and the hotness tracker: a query touches a small, stable
// set of cells, so invalidation and hotness can work per cell instead
// of per query.
package cellmap

import (
	"github.com/geoconsole/spatial-canvas/internal/model"
)

// Mapper converts a validated query region into a deterministic,
// sorted set of cell ids.
type Mapper interface {
	CellsForQuery(q model.QueryRequest) (model.Cells, error)
	CellForPoint(c model.Coordinate) (string, error)
}

// QueryBounds returns the axis-aligned bounds of a query region. For
// radius queries that is the bounding square of the circle.
func QueryBounds(q model.QueryRequest) (model.BBox, bool) {
	switch q.Mode {
	case model.ModeBBox:
		if q.Rect == nil {
			return model.BBox{}, false
		}
		return q.Rect.Normalize(), true
	case model.ModeRadius:
		if q.Center == nil {
			return model.BBox{}, false
		}
		return model.BBox{
			X1: q.Center.X - q.Radius,
			Y1: q.Center.Y - q.Radius,
			X2: q.Center.X + q.Radius,
			Y2: q.Center.Y + q.Radius,
		}, true
	default:
		return model.BBox{}, false
	}
}
