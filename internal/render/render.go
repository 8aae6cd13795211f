// Package render rasterizes the canvas: visible features, the active
// drag overlay and the computed route, in that order.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/geoconsole/spatial-canvas/internal/canvas"
	"github.com/geoconsole/spatial-canvas/internal/model"
)

const (
	pointRadius     = 6
	highlightRadius = 9
	labelOffsetX    = 10
	labelOffsetY    = 4
	labelFontSize   = 11

	backgroundColor = "#16213e"
	gridColor       = "#1f2b4d"
	labelColor      = "#e0e0e0"
	highlightColor  = "#ffd166"
	routeColor      = "#ef476f"
	overlayColor    = "#06d6a0"
	fallbackColor   = "#888888"
)

type Renderer struct {
	w, h     int
	gridStep float64
	font     *truetype.Font
}

func New(w, h int, gridStep float64) (*Renderer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}
	if gridStep <= 0 {
		gridStep = 50
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse label font: %w", err)
	}
	return &Renderer{w: w, h: h, gridStep: gridStep, font: f}, nil
}

// Render paints one frame. It never mutates its inputs; repeated calls
// with the same inputs produce identical frames. Features draw in
// collection order, overlays always last.
func (r *Renderer) Render(features []model.Feature, layers []model.Layer, st canvas.State) image.Image {
	dc := gg.NewContext(r.w, r.h)
	// a truetype face caches glyphs and is not safe for concurrent
	// use; each frame gets its own
	dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: labelFontSize}))

	dc.SetHexColor(backgroundColor)
	dc.Clear()
	r.drawGrid(dc)

	byID := make(map[string]model.Layer, len(layers))
	for _, l := range layers {
		byID[l.ID] = l
	}

	for _, f := range features {
		l, ok := byID[f.Layer]
		// an unresolvable layer reference hides the feature, never errors
		if !ok || !l.Visible {
			continue
		}
		color := l.Color
		if color == "" {
			color = fallbackColor
		}
		selected := st.Selected != nil && st.Selected.ID == f.ID
		r.drawFeature(dc, f, color, selected)
	}

	r.drawOverlay(dc, st)
	r.drawRoute(dc, st.Route)

	return dc.Image()
}

func (r *Renderer) drawGrid(dc *gg.Context) {
	dc.SetHexColor(gridColor)
	dc.SetLineWidth(1)
	for x := 0.0; x <= float64(r.w); x += r.gridStep {
		dc.DrawLine(x, 0, x, float64(r.h))
		dc.Stroke()
	}
	for y := 0.0; y <= float64(r.h); y += r.gridStep {
		dc.DrawLine(0, y, float64(r.w), y)
		dc.Stroke()
	}
}

func (r *Renderer) drawFeature(dc *gg.Context, f model.Feature, color string, selected bool) {
	switch f.Geom.Kind {
	case model.KindPoint:
		p := f.Geom.Point
		dc.SetHexColor(color)
		dc.DrawCircle(p.X, p.Y, pointRadius)
		dc.Fill()
		if selected {
			dc.SetHexColor(highlightColor)
			dc.SetLineWidth(2)
			dc.DrawCircle(p.X, p.Y, highlightRadius)
			dc.Stroke()
		}
		if f.Name != "" {
			dc.SetHexColor(labelColor)
			dc.DrawString(f.Name, p.X+labelOffsetX, p.Y+labelOffsetY)
		}

	case model.KindLineString:
		dc.SetHexColor(color)
		dc.SetLineWidth(2)
		dc.MoveTo(f.Geom.Line[0].X, f.Geom.Line[0].Y)
		for _, c := range f.Geom.Line[1:] {
			dc.LineTo(c.X, c.Y)
		}
		dc.Stroke()

	case model.KindPolygon:
		// only the first ring is drawn; holes are not supported
		ring := f.Geom.Rings[0]
		dc.MoveTo(ring[0].X, ring[0].Y)
		for _, c := range ring[1:] {
			dc.LineTo(c.X, c.Y)
		}
		dc.ClosePath()
		dc.SetHexColor(color + "55")
		dc.FillPreserve()
		dc.SetHexColor(color)
		dc.SetLineWidth(2)
		dc.Stroke()
	}
}

func (r *Renderer) drawOverlay(dc *gg.Context, st canvas.State) {
	if st.DragStart == nil || st.DragEnd == nil {
		return
	}
	start, end := *st.DragStart, *st.DragEnd

	dc.SetHexColor(overlayColor)
	dc.SetLineWidth(1.5)
	dc.SetDash(6, 4)
	defer dc.SetDash()

	switch st.Mode {
	case model.ModeBBox:
		rect := model.BBox{X1: start.X, Y1: start.Y, X2: end.X, Y2: end.Y}.Normalize()
		dc.DrawRectangle(rect.X1, rect.Y1, rect.X2-rect.X1, rect.Y2-rect.Y1)
		dc.Stroke()
	case model.ModeRadius:
		dc.DrawCircle(start.X, start.Y, start.Dist(end))
		dc.Stroke()
	}
}

func (r *Renderer) drawRoute(dc *gg.Context, route model.RoutePath) {
	if len(route) < 2 {
		return
	}
	dc.SetHexColor(routeColor)
	dc.SetLineWidth(2.5)
	dc.SetDash(8, 5)
	defer dc.SetDash()

	dc.MoveTo(route[0].X, route[0].Y)
	for _, c := range route[1:] {
		dc.LineTo(c.X, c.Y)
	}
	dc.Stroke()
}

// EncodePNG serializes a rendered frame.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
