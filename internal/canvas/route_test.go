package canvas

import (
	"testing"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

func TestRoute_TwoPointStraightLine(t *testing.T) {
	path := Route(demoFeatures(), "f1", "f4")
	want := model.RoutePath{{X: 400, Y: 300}, {X: 600, Y: 400}}
	if len(path) != 2 || path[0] != want[0] || path[1] != want[1] {
		t.Fatalf("Route(f1,f4) = %v, want %v", path, want)
	}
}

func TestRoute_NonPointEndpointProducesNoPath(t *testing.T) {
	// f2 is a polygon
	if path := Route(demoFeatures(), "f1", "f2"); path != nil {
		t.Fatalf("want no path, got %v", path)
	}
	if path := Route(demoFeatures(), "f3", "f1"); path != nil {
		t.Fatalf("want no path for linestring start, got %v", path)
	}
}

func TestRoute_MissingEndpointProducesNoPath(t *testing.T) {
	if path := Route(demoFeatures(), "f1", "missing"); path != nil {
		t.Fatalf("want no path, got %v", path)
	}
	if path := Route(demoFeatures(), "missing", "f4"); path != nil {
		t.Fatalf("want no path, got %v", path)
	}
}

func TestRoute_SameEndpointTwice(t *testing.T) {
	path := Route(demoFeatures(), "f1", "f1")
	if len(path) != 2 || path[0] != path[1] {
		t.Fatalf("degenerate route should still be two points: %v", path)
	}
}
