package render

import (
	"testing"

	"github.com/geoconsole/spatial-canvas/internal/canvas"
	"github.com/geoconsole/spatial-canvas/internal/model"
)

func TestFrameKey_StableForEqualState(t *testing.T) {
	layers := testLayers()
	st := canvas.State{
		Mode:      model.ModeBBox,
		DragStart: &model.Coordinate{X: 10, Y: 20},
		DragEnd:   &model.Coordinate{X: 30, Y: 40},
	}
	if FrameKey(7, layers, st) != FrameKey(7, layers, st) {
		t.Fatal("equal inputs must digest to the same key")
	}
}

func TestFrameKey_SensitiveToInputs(t *testing.T) {
	layers := testLayers()
	st := canvas.State{Mode: model.ModeSelect}
	base := FrameKey(1, layers, st)

	if FrameKey(2, layers, st) == base {
		t.Error("version change must change the key")
	}

	hidden := testLayers()
	hidden[0].Visible = false
	if FrameKey(1, hidden, st) == base {
		t.Error("visibility change must change the key")
	}

	recolored := testLayers()
	recolored[1].Color = "#000000"
	if FrameKey(1, recolored, st) == base {
		t.Error("color change must change the key")
	}

	feats := testFeatures()
	selected := st
	selected.Selected = &feats[0]
	if FrameKey(1, layers, selected) == base {
		t.Error("selection change must change the key")
	}

	routed := st
	routed.Route = model.RoutePath{{X: 1, Y: 2}, {X: 3, Y: 4}}
	if FrameKey(1, layers, routed) == base {
		t.Error("route change must change the key")
	}
}

func TestFrameKey_IgnoresResults(t *testing.T) {
	layers := testLayers()
	st := canvas.State{Mode: model.ModeBBox}
	withResults := st
	withResults.Results = testFeatures()

	if FrameKey(1, layers, st) != FrameKey(1, layers, withResults) {
		t.Fatal("query results are not drawn and must not affect the key")
	}
}

func TestFrameCache_AddGetEvict(t *testing.T) {
	c, err := NewFrameCache(2)
	if err != nil {
		t.Fatalf("frame cache: %v", err)
	}

	c.Add(1, []byte("a"))
	c.Add(2, []byte("b"))

	if got, ok := c.Get(1); !ok || string(got) != "a" {
		t.Fatalf("Get(1) = %q ok=%v", got, ok)
	}

	// 2 is now the least recently used entry and gets evicted
	c.Add(3, []byte("c"))
	if _, ok := c.Get(2); ok {
		t.Fatal("expected key 2 to be evicted")
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}
