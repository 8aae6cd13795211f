package geojson

import (
	"strings"
	"testing"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "f1",
      "geometry": {"type": "Point", "coordinates": [400, 300]},
      "properties": {"name": "City Center", "layer": "cities"}
    },
    {
      "type": "Feature",
      "geometry": {"type": "LineString", "coordinates": [[200, 300], [400, 300], [600, 320]]},
      "properties": {"id": "f3", "layer": "roads"}
    },
    {
      "type": "Feature",
      "id": "f2",
      "geometry": {"type": "Polygon", "coordinates": [[[350, 250], [450, 250], [450, 350], [350, 350], [350, 250]]]},
      "properties": {"layer": "districts"}
    }
  ]
}`

func TestDecode(t *testing.T) {
	feats, err := Decode([]byte(sampleCollection))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(feats) != 3 {
		t.Fatalf("want 3 features, got %d", len(feats))
	}

	f1 := feats[0]
	if f1.ID != "f1" || f1.Name != "City Center" || f1.Layer != "cities" {
		t.Fatalf("f1 metadata wrong: %+v", f1)
	}
	if f1.Geom.Kind != model.KindPoint || f1.Geom.Point != (model.Coordinate{X: 400, Y: 300}) {
		t.Fatalf("f1 geometry wrong: %+v", f1.Geom)
	}

	// id falls back to the "id" property
	f3 := feats[1]
	if f3.ID != "f3" || f3.Geom.Kind != model.KindLineString || len(f3.Geom.Line) != 3 {
		t.Fatalf("f3 wrong: %+v", f3)
	}

	// the duplicated closing vertex is dropped on decode
	f2 := feats[2]
	if f2.Geom.Kind != model.KindPolygon || len(f2.Geom.Rings[0]) != 4 {
		t.Fatalf("f2 ring should be stored open with 4 vertices: %+v", f2.Geom.Rings)
	}
}

func TestDecode_Rejections(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"not json", `{oops`},
		{"wrong collection type", `{"type": "Feature", "features": []}`},
		{"wrong feature type", `{"type": "FeatureCollection", "features": [{"type": "Banana", "geometry": {"type": "Point", "coordinates": [0, 0]}}]}`},
		{"unsupported geometry", `{"type": "FeatureCollection", "features": [{"type": "Feature", "id": "x", "geometry": {"type": "MultiPoint", "coordinates": [[0, 0]]}, "properties": {"layer": "l"}}]}`},
		{"short coordinate", `{"type": "FeatureCollection", "features": [{"type": "Feature", "id": "x", "geometry": {"type": "Point", "coordinates": [1]}, "properties": {"layer": "l"}}]}`},
		{"empty polygon", `{"type": "FeatureCollection", "features": [{"type": "Feature", "id": "x", "geometry": {"type": "Polygon", "coordinates": []}, "properties": {"layer": "l"}}]}`},
		{"missing id", `{"type": "FeatureCollection", "features": [{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"layer": "l"}}]}`},
	}
	for _, tc := range cases {
		if _, err := Decode([]byte(tc.in)); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestDecode_NumericID(t *testing.T) {
	feats, err := Decode([]byte(`{"type": "FeatureCollection", "features": [{"type": "Feature", "id": 42, "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"layer": "l"}}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if feats[0].ID != "42" {
		t.Fatalf("numeric id must stringify, got %q", feats[0].ID)
	}
}

func TestMerge(t *testing.T) {
	dst := []model.Feature{
		{ID: "a", Name: "one"},
		{ID: "b", Name: "two"},
	}
	got := Merge(dst, []model.Feature{
		{ID: "b", Name: "two-replaced"},
		{ID: "c", Name: "three"},
	})

	if len(got) != 3 {
		t.Fatalf("want 3 features, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("order wrong: %v", got)
	}
	if got[1].Name != "two-replaced" {
		t.Fatal("existing id must be replaced in place")
	}
}

func TestEncode_ClosesRings(t *testing.T) {
	data, err := Encode([]model.Feature{{
		ID:    "f2",
		Layer: "districts",
		Geom: model.Geometry{Kind: model.KindPolygon, Rings: [][]model.Coordinate{{
			{X: 350, Y: 250}, {X: 450, Y: 250}, {X: 450, Y: 350}, {X: 350, Y: 350},
		}}},
	}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// the open ring is re-closed on output
	if !strings.Contains(string(data), "[[[350,250],[450,250],[450,350],[350,350],[350,250]]]") {
		t.Fatalf("ring not closed: %s", data)
	}
}

func TestEncodeDecode_Roundtrip(t *testing.T) {
	feats, err := Decode([]byte(sampleCollection))
	if err != nil {
		t.Fatal(err)
	}
	data, err := Encode(feats)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Decode(data)
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if len(again) != len(feats) {
		t.Fatalf("roundtrip lost features: %d vs %d", len(again), len(feats))
	}
	for i := range feats {
		if again[i].ID != feats[i].ID || again[i].Layer != feats[i].Layer {
			t.Fatalf("feature %d changed: %+v vs %+v", i, again[i], feats[i])
		}
	}
}
