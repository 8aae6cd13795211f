package cellmap

import (
	"fmt"
	"math"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

// GridMapper quantizes canvas space into uniform square cells. It is
// the default for collections in plain canvas coordinates, where H3
// does not apply.
type GridMapper struct {
	Size float64
}

func NewGrid(size float64) *GridMapper {
	if size <= 0 {
		size = 100
	}
	return &GridMapper{Size: size}
}

var _ Mapper = (*GridMapper)(nil)

func (m *GridMapper) CellForPoint(c model.Coordinate) (string, error) {
	return m.cell(cellIndex(c.X, m.Size), cellIndex(c.Y, m.Size)), nil
}

// CellsForQuery covers the query bounds with grid cells, in row-major
// order (already sorted by construction).
func (m *GridMapper) CellsForQuery(q model.QueryRequest) (model.Cells, error) {
	bounds, ok := QueryBounds(q)
	if !ok {
		return nil, fmt.Errorf("query mode %q has no region", q.Mode)
	}

	x0 := cellIndex(bounds.X1, m.Size)
	x1 := cellIndex(bounds.X2, m.Size)
	y0 := cellIndex(bounds.Y1, m.Size)
	y1 := cellIndex(bounds.Y2, m.Size)

	out := make(model.Cells, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			out = append(out, m.cell(x, y))
		}
	}
	return out, nil
}

func (m *GridMapper) cell(x, y int) string {
	return fmt.Sprintf("g:%d:%d", x, y)
}

func cellIndex(v, size float64) int {
	return int(math.Floor(v / size))
}
