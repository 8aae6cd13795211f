package cellmap

import (
	"errors"
	"fmt"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

// H3Mapper polyfills query regions with H3 cells. Used when the
// collection is declared EPSG:4326, with X as longitude and Y as
// latitude.
type H3Mapper struct {
	Res int
}

func NewH3(res int) (*H3Mapper, error) {
	if res < 0 || res > 15 {
		return nil, fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return &H3Mapper{Res: res}, nil
}

var _ Mapper = (*H3Mapper)(nil)

func (m *H3Mapper) CellForPoint(c model.Coordinate) (string, error) {
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: c.Y, Lng: c.X}, m.Res)
	if err != nil {
		return "", fmt.Errorf("h3 point cell: %w", err)
	}
	return cell.String(), nil
}

func (m *H3Mapper) CellsForQuery(q model.QueryRequest) (model.Cells, error) {
	bounds, ok := QueryBounds(q)
	if !ok {
		return nil, fmt.Errorf("query mode %q has no region", q.Mode)
	}

	outer := h3.GeoLoop{
		{Lat: bounds.Y1, Lng: bounds.X1},
		{Lat: bounds.Y1, Lng: bounds.X2},
		{Lat: bounds.Y2, Lng: bounds.X2},
		{Lat: bounds.Y2, Lng: bounds.X1},
	}
	return polyfill(outer, m.Res)
}

// polyfill computes unique cells and returns them sorted for
// determinism.
func polyfill(outer h3.GeoLoop, res int) (model.Cells, error) {
	if len(outer) < 4 {
		return nil, errors.New("region loop has < 4 vertices")
	}
	indexes, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer}, res)
	if err != nil {
		return nil, fmt.Errorf("h3 polyfill: %w", err)
	}

	out := make(model.Cells, 0, len(indexes))
	seen := make(map[string]struct{}, len(indexes))
	for _, idx := range indexes {
		s := idx.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
