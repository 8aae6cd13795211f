// Package canvas implements the spatial canvas interaction engine:
// hit-testing, the drag-gesture state machine, region query
// evaluation, and the straight-line route placeholder.
package canvas

import (
	"sync"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

// Provider gives read-only access to the current feature collection.
type Provider interface {
	Features() []model.Feature
}

// State is a snapshot of the interaction state, taken under the
// engine lock and safe to hand to the renderer.
type State struct {
	Mode      model.Mode
	DragStart *model.Coordinate
	DragEnd   *model.Coordinate
	Selected  *model.Feature
	Results   []model.Feature
	Route     model.RoutePath
}

// Engine owns all mutable interaction state. It is the single logical
// actor over gesture, selection, result set and route; concurrent
// callers serialize on one mutex so every transition observes a
// consistent aggregate.
type Engine struct {
	mu  sync.Mutex
	src Provider

	tolerance float64

	mode      model.Mode
	dragStart *model.Coordinate
	dragEnd   *model.Coordinate
	selected  *model.Feature
	results   []model.Feature
	route     model.RoutePath

	onSelect  func(model.Feature)
	onResults func([]model.Feature)
}

func New(src Provider, tolerance float64) *Engine {
	if tolerance <= 0 {
		tolerance = 10
	}
	return &Engine{
		src:       src,
		tolerance: tolerance,
		mode:      model.ModeSelect,
		results:   []model.Feature{},
	}
}

// OnSelect registers a callback invoked after a successful hit-test.
func (e *Engine) OnSelect(fn func(model.Feature)) {
	e.mu.Lock()
	e.onSelect = fn
	e.mu.Unlock()
}

// OnResults registers a callback invoked when a drag gesture
// completes with a (possibly empty) result set.
func (e *Engine) OnResults(fn func([]model.Feature)) {
	e.mu.Lock()
	e.onResults = fn
	e.mu.Unlock()
}

// SetMode switches the drawing mode. Any in-progress gesture is
// discarded; there is no other cleanup to do.
func (e *Engine) SetMode(m model.Mode) {
	e.mu.Lock()
	e.mode = m
	e.dragStart = nil
	e.dragEnd = nil
	e.mu.Unlock()
}

func (e *Engine) Mode() model.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// PointerDown begins a gesture. In select mode the down event is the
// click: it hit-tests immediately and updates the selection. In any
// other mode it transitions idle -> dragging with start = end = at.
func (e *Engine) PointerDown(at model.Coordinate) {
	e.mu.Lock()

	if e.mode == model.ModeSelect {
		f, ok := HitTest(e.src.Features(), at, e.tolerance)
		var cb func(model.Feature)
		if ok {
			cp := f
			e.selected = &cp
			cb = e.onSelect
		} else {
			e.selected = nil
		}
		e.mu.Unlock()
		if cb != nil {
			cb(f)
		}
		return
	}

	start := at
	end := at
	e.dragStart = &start
	e.dragEnd = &end
	e.mu.Unlock()
}

// HitTest resolves a coordinate against the collection with the
// engine's tolerance, without changing the selection.
func (e *Engine) HitTest(at model.Coordinate) (model.Feature, bool) {
	return HitTest(e.src.Features(), at, e.tolerance)
}

// PointerMove updates the gesture end point. Moves outside an active
// gesture are ignored.
func (e *Engine) PointerMove(at model.Coordinate) {
	e.mu.Lock()
	if e.dragStart != nil {
		end := at
		e.dragEnd = &end
	}
	e.mu.Unlock()
}

// PointerUp completes the gesture: it evaluates the region query for
// the current mode, replaces the result set wholesale, clears the
// gesture state and returns to idle. With no active gesture it is a
// no-op returning the previous results.
func (e *Engine) PointerUp(at model.Coordinate) []model.Feature {
	e.mu.Lock()

	if e.dragStart == nil {
		out := append([]model.Feature(nil), e.results...)
		e.mu.Unlock()
		return out
	}

	start := *e.dragStart
	end := at
	e.dragStart = nil
	e.dragEnd = nil

	var q model.QueryRequest
	switch e.mode {
	case model.ModeBBox:
		rect := model.BBox{X1: start.X, Y1: start.Y, X2: end.X, Y2: end.Y}
		q = model.QueryRequest{Mode: model.ModeBBox, Rect: &rect}
	case model.ModeRadius:
		q = model.QueryRequest{Mode: model.ModeRadius, Center: &start, Radius: start.Dist(end)}
	default:
		// polygon capture is offered by the console but has no
		// evaluator; the gesture resolves to an empty result set
		q = model.QueryRequest{Mode: e.mode}
	}

	e.results = Evaluate(e.src.Features(), q)
	out := append([]model.Feature(nil), e.results...)
	cb := e.onResults
	e.mu.Unlock()

	if cb != nil {
		cb(out)
	}
	return out
}

// ComputeRoute resolves both endpoints and replaces the route path
// wholesale. Unresolvable endpoints clear the route.
func (e *Engine) ComputeRoute(fromID, toID string) model.RoutePath {
	path := Route(e.src.Features(), fromID, toID)
	e.mu.Lock()
	e.route = path
	e.mu.Unlock()
	return path
}

// Snapshot returns a copy of the interaction state for rendering.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{Mode: e.mode}
	if e.dragStart != nil {
		c := *e.dragStart
		st.DragStart = &c
	}
	if e.dragEnd != nil {
		c := *e.dragEnd
		st.DragEnd = &c
	}
	if e.selected != nil {
		f := *e.selected
		st.Selected = &f
	}
	st.Results = append([]model.Feature(nil), e.results...)
	st.Route = append(model.RoutePath(nil), e.route...)
	return st
}
