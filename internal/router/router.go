// Package router parses and serves the canvas HTTP API.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/geoconsole/spatial-canvas/internal/canvas"
	"github.com/geoconsole/spatial-canvas/internal/cache/querycache"
	"github.com/geoconsole/spatial-canvas/internal/cellmap"
	"github.com/geoconsole/spatial-canvas/internal/geojson"
	"github.com/geoconsole/spatial-canvas/internal/hotness"
	"github.com/geoconsole/spatial-canvas/internal/model"
	"github.com/geoconsole/spatial-canvas/internal/observability"
	"github.com/geoconsole/spatial-canvas/internal/render"
	"github.com/geoconsole/spatial-canvas/internal/store"
)

type API struct {
	log      *slog.Logger
	store    *store.Store
	engine   *canvas.Engine
	renderer *render.Renderer
	frames   *render.FrameCache
	cache    querycache.Cache
	mapper   cellmap.Mapper
	hot      hotness.Interface
}

func New(log *slog.Logger, st *store.Store, eng *canvas.Engine, rend *render.Renderer, frames *render.FrameCache, qc querycache.Cache, mapper cellmap.Mapper, hot hotness.Interface) *API {
	if log == nil {
		log = slog.Default()
	}
	if qc == nil {
		qc = querycache.Noop{}
	}
	return &API{
		log:      log,
		store:    st,
		engine:   eng,
		renderer: rend,
		frames:   frames,
		cache:    qc,
		mapper:   mapper,
		hot:      hot,
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (a *API) instrument(route string, fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		fn(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

// Features serves the collection as GeoJSON, optionally filtered by
// layer id.
func (a *API) Features() http.HandlerFunc {
	return a.instrument("/features", func(w http.ResponseWriter, r *http.Request) {
		feats := a.store.Features()
		if layer := strings.TrimSpace(r.URL.Query().Get("layer")); layer != "" {
			filtered := feats[:0:0]
			for _, f := range feats {
				if f.Layer == layer {
					filtered = append(filtered, f)
				}
			}
			feats = filtered
		}

		data, err := geojson.Encode(feats)
		if err != nil {
			a.log.Error("encode features failed", "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(data)
	})
}

// ImportFeatures merges a posted GeoJSON FeatureCollection into the
// collection.
func (a *API) ImportFeatures() http.HandlerFunc {
	return a.instrument("/features/import", func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		feats, err := geojson.Decode(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := a.store.Import(feats); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.log.Info("features imported", "count", len(feats), "version", a.store.Version())
		writeJSON(w, http.StatusOK, map[string]any{
			"imported": len(feats),
			"version":  a.store.Version(),
		})
	})
}

func (a *API) Layers() http.HandlerFunc {
	return a.instrument("/layers", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, a.store.Layers())
	})
}

// SetLayerVisibility toggles render visibility. Queries are not
// affected; visibility is a render-time concern only.
func (a *API) SetLayerVisibility() http.HandlerFunc {
	return a.instrument("/layers/{id}/visibility", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Visible *bool `json:"visible"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Visible == nil {
			http.Error(w, `body must be {"visible": true|false}`, http.StatusBadRequest)
			return
		}
		if err := a.store.SetLayerVisible(id, *req.Visible); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": id, "visible": *req.Visible})
	})
}

// Pointer feeds one pointer event into the gesture state machine. The
// response to an "up" event carries the query result set.
func (a *API) Pointer() http.HandlerFunc {
	return a.instrument("/canvas/pointer", func(w http.ResponseWriter, r *http.Request) {
		var ev struct {
			Type string  `json:"type"`
			X    float64 `json:"x"`
			Y    float64 `json:"y"`
		}
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "invalid pointer event: "+err.Error(), http.StatusBadRequest)
			return
		}
		at := model.Coordinate{X: ev.X, Y: ev.Y}

		switch ev.Type {
		case "down":
			a.engine.PointerDown(at)
			st := a.engine.Snapshot()
			writeJSON(w, http.StatusOK, map[string]any{"selected": st.Selected})
		case "move":
			a.engine.PointerMove(at)
			w.WriteHeader(http.StatusNoContent)
		case "up":
			start := time.Now()
			mode := a.engine.Mode()
			results := a.engine.PointerUp(at)
			if mode != model.ModeSelect {
				observability.ObserveQuery(string(mode), time.Since(start).Seconds())
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"count":    len(results),
				"features": results,
			})
		default:
			http.Error(w, fmt.Sprintf("unknown pointer event type %q", ev.Type), http.StatusBadRequest)
		}
	})
}

func (a *API) SetMode() http.HandlerFunc {
	return a.instrument("/canvas/mode", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid mode request: "+err.Error(), http.StatusBadRequest)
			return
		}
		m, err := model.ParseMode(req.Mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.engine.SetMode(m)
		writeJSON(w, http.StatusOK, map[string]any{"mode": m})
	})
}

// Select hit-tests a click coordinate without touching engine state.
func (a *API) Select() http.HandlerFunc {
	return a.instrument("/canvas/select", func(w http.ResponseWriter, r *http.Request) {
		at, err := parseCoord(r.URL.Query().Get("x"), r.URL.Query().Get("y"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f, ok := a.engine.HitTest(at)
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"selected": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"selected": f})
	})
}

// Query runs a region query directly, consulting the cache first.
func (a *API) Query() http.HandlerFunc {
	return a.instrument("/query", func(w http.ResponseWriter, r *http.Request) {
		q, err := ParseQueryRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		start := time.Now()
		version := a.store.Version()

		var cells model.Cells
		if a.mapper != nil {
			cells, err = a.mapper.CellsForQuery(q)
			if err != nil {
				a.log.Warn("cell mapping failed", "err", err)
				cells = nil
			}
		}
		if a.hot != nil {
			for _, c := range cells {
				a.hot.Inc(c)
			}
		}

		feats, hit := a.cache.Get(r.Context(), q, version, cells)
		if !hit {
			feats = canvas.Evaluate(a.store.Features(), q)
			a.cache.Put(r.Context(), q, version, cells, feats)
		}
		observability.ObserveQuery(string(q.Mode), time.Since(start).Seconds())

		writeJSON(w, http.StatusOK, map[string]any{
			"count":    len(feats),
			"cached":   hit,
			"features": feats,
		})
	})
}

// Route serves the straight-line placeholder path.
func (a *API) Route() http.HandlerFunc {
	return a.instrument("/route", func(w http.ResponseWriter, r *http.Request) {
		from := strings.TrimSpace(r.URL.Query().Get("from"))
		to := strings.TrimSpace(r.URL.Query().Get("to"))
		if from == "" || to == "" {
			http.Error(w, "missing required parameters: from, to", http.StatusBadRequest)
			return
		}

		path := a.engine.ComputeRoute(from, to)
		if path == nil {
			writeJSON(w, http.StatusOK, map[string]any{"path": nil})
			return
		}
		coords := make([][]float64, 0, len(path))
		for _, c := range path {
			coords = append(coords, []float64{c.X, c.Y})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"type": "straight-line",
			"path": coords,
		})
	})
}

// RenderFrame serves the current canvas as PNG, via the frame cache.
func (a *API) RenderFrame() http.HandlerFunc {
	return a.instrument("/canvas/render", func(w http.ResponseWriter, r *http.Request) {
		layers := a.store.Layers()
		st := a.engine.Snapshot()
		key := render.FrameKey(a.store.Version(), layers, st)

		if a.frames != nil {
			if frame, ok := a.frames.Get(key); ok {
				observability.ObserveRender(true, 0)
				servePNG(w, frame)
				return
			}
		}

		start := time.Now()
		img := a.renderer.Render(a.store.Features(), layers, st)
		frame, err := render.EncodePNG(img)
		if err != nil {
			a.log.Error("frame encode failed", "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		observability.ObserveRender(false, time.Since(start).Seconds())
		if a.frames != nil {
			a.frames.Add(key, frame)
		}
		servePNG(w, frame)
	})
}

// ParseQueryRequest validates /query parameters. Polygon and
// intersection query types exist in the console's selector but have
// no evaluator; they are rejected explicitly rather than silently
// returning nothing.
func ParseQueryRequest(r *http.Request) (model.QueryRequest, error) {
	rawMode := strings.TrimSpace(r.URL.Query().Get("mode"))
	if rawMode == "" {
		return model.QueryRequest{}, errors.New("missing required parameter: mode")
	}

	switch rawMode {
	case string(model.ModeBBox):
		rect, err := parseBBoxParam(r.URL.Query().Get("bbox"))
		if err != nil {
			return model.QueryRequest{}, fmt.Errorf("invalid bbox: %w", err)
		}
		return model.QueryRequest{Mode: model.ModeBBox, Rect: &rect}, nil

	case string(model.ModeRadius):
		center, err := parseCoord2(r.URL.Query().Get("center"))
		if err != nil {
			return model.QueryRequest{}, fmt.Errorf("invalid center: %w", err)
		}
		radius, err := parseFloat(r.URL.Query().Get("radius"))
		if err != nil {
			return model.QueryRequest{}, fmt.Errorf("invalid radius: %w", err)
		}
		if radius < 0 {
			return model.QueryRequest{}, errors.New("radius must be >= 0")
		}
		return model.QueryRequest{Mode: model.ModeRadius, Center: &center, Radius: radius}, nil

	case string(model.ModePolygon), "intersects":
		return model.QueryRequest{}, fmt.Errorf("query mode %q is not implemented", rawMode)

	default:
		return model.QueryRequest{}, fmt.Errorf("unknown query mode %q", rawMode)
	}
}

func parseBBoxParam(raw string) (model.BBox, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 4 {
		return model.BBox{}, errors.New("expected 4 comma-separated values: x1,y1,x2,y2")
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		f, err := parseFloat(p)
		if err != nil {
			return model.BBox{}, fmt.Errorf("value %d: %w", i+1, err)
		}
		vals[i] = f
	}
	return model.BBox{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3]}.Normalize(), nil
}

func parseCoord2(raw string) (model.Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(raw), ",")
	if len(parts) != 2 {
		return model.Coordinate{}, errors.New("expected 2 comma-separated values: x,y")
	}
	return parseCoord(parts[0], parts[1])
}

func parseCoord(xs, ys string) (model.Coordinate, error) {
	x, err := parseFloat(xs)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("x: %w", err)
	}
	y, err := parseFloat(ys)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("y: %w", err)
	}
	return model.Coordinate{X: x, Y: y}, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}

func readBody(r *http.Request) ([]byte, error) {
	const maxImportBytes = 32 << 20
	body := http.MaxBytesReader(nil, r.Body, maxImportBytes)
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func servePNG(w http.ResponseWriter, frame []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(frame)))
	_, _ = w.Write(frame)
}
