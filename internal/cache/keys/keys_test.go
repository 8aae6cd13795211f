package keys

import (
	"strings"
	"testing"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

func bboxQuery(x1, y1, x2, y2 float64) model.QueryRequest {
	return model.QueryRequest{
		Mode: model.ModeBBox,
		Rect: &model.BBox{X1: x1, Y1: y1, X2: x2, Y2: y2},
	}
}

func TestQuery_Deterministic(t *testing.T) {
	q := bboxQuery(100, 100, 500, 400)
	cells := model.Cells{"g:1:1", "g:2:1"}

	a := Query(q, 3, cells)
	b := Query(q, 3, cells)
	if a != b {
		t.Fatalf("same inputs must yield the same key: %q vs %q", a, b)
	}
}

func TestQuery_EmbedsVersion(t *testing.T) {
	q := bboxQuery(100, 100, 500, 400)
	cells := model.Cells{"g:1:1"}

	k3 := Query(q, 3, cells)
	k4 := Query(q, 4, cells)
	if k3 == k4 {
		t.Fatal("version bump must change the key")
	}
	if !strings.Contains(k3, ":v3:") || !strings.Contains(k4, ":v4:") {
		t.Fatalf("keys must carry the version: %q / %q", k3, k4)
	}
}

func TestQuery_DistinguishesRegions(t *testing.T) {
	cells := model.Cells{"g:1:1"}
	a := Query(bboxQuery(0, 0, 100, 100), 1, cells)
	b := Query(bboxQuery(0, 0, 100, 101), 1, cells)
	if a == b {
		t.Fatal("different regions must produce different keys")
	}

	r := Query(model.QueryRequest{
		Mode:   model.ModeRadius,
		Center: &model.Coordinate{X: 50, Y: 50},
		Radius: 70,
	}, 1, cells)
	if r == a {
		t.Fatal("radius and bbox keys must not collide")
	}
	if !strings.HasPrefix(r, "q:radius:") {
		t.Fatalf("key must carry the mode, got %q", r)
	}
}

func TestQuery_DistinguishesCellSets(t *testing.T) {
	q := bboxQuery(0, 0, 100, 100)
	a := Query(q, 1, model.Cells{"g:0:0"})
	b := Query(q, 1, model.Cells{"g:0:0", "g:1:0"})
	if a == b {
		t.Fatal("different cell sets must produce different keys")
	}
}

func TestCell(t *testing.T) {
	cases := []struct{ in, want string }{
		{"g:4:2", "cell:g:4:2"},
		{"8928308280fffff", "cell:8928308280fffff"},
		{"a b", "cell:a_b"},
		{"a**b", "cell:a-b"},
	}
	for _, tc := range cases {
		if got := Cell(tc.in); got != tc.want {
			t.Errorf("Cell(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
