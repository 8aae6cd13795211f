package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geoconsole/spatial-canvas/internal/cellmap"
	"github.com/geoconsole/spatial-canvas/internal/model"
)

type Store interface {
	Upsert(f model.Feature) error
	Delete(id string)
}

type Cache interface {
	PurgeCells(ctx context.Context, cells model.Cells) error
}

type HotnessResetter interface {
	Reset(cells ...string)
}

// Handler applies decoded feature update events: mutate the store,
// purge the touched cache cells, reset their hotness. It is separate
// from the consumer-group plumbing so the apply path can be tested
// without a broker.
type Handler struct {
	log    *slog.Logger
	store  Store
	cache  Cache
	mapper cellmap.Mapper
	hot    HotnessResetter

	// replays and duplicates at or below the per-feature version
	// high-water mark are dropped
	seen *versionDedupe
}

func NewHandler(log *slog.Logger, store Store, cache Cache, mapper cellmap.Mapper, hot HotnessResetter) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if store == nil {
		return nil, errors.New("kafka handler: store dependency is required")
	}
	seen, err := newVersionDedupe(8192)
	if err != nil {
		return nil, fmt.Errorf("kafka handler dedupe: %w", err)
	}
	return &Handler{log: log, store: store, cache: cache, mapper: mapper, hot: hot, seen: seen}, nil
}

func (h *Handler) Decode(raw []byte) (WireEvent, error) {
	var ev WireEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return WireEvent{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}

func (h *Handler) Apply(ctx context.Context, ev WireEvent) error {
	id := ev.FeatureID
	if id == "" && ev.Feature != nil {
		id = ev.Feature.ID
	}
	if id == "" {
		return errors.New("event has no feature id")
	}

	switch ev.Op {
	case OpUpsert:
		if ev.Feature == nil {
			return fmt.Errorf("upsert event for %s has no feature payload", id)
		}
	case OpDelete:
	default:
		return fmt.Errorf("unknown event op %q", ev.Op)
	}

	if !h.seen.shouldApply(id, ev.Version) {
		h.log.Debug("duplicate event dropped", "feature", id, "version", ev.Version)
		return nil
	}

	switch ev.Op {
	case OpUpsert:
		if err := h.store.Upsert(*ev.Feature); err != nil {
			return fmt.Errorf("apply upsert %s: %w", id, err)
		}
	case OpDelete:
		h.store.Delete(id)
	}

	cells := model.Cells(ev.Cells)
	if len(cells) == 0 {
		cells = h.deriveCells(ev)
	}
	if len(cells) == 0 {
		return nil
	}

	if h.cache != nil {
		if err := h.cache.PurgeCells(ctx, cells); err != nil {
			h.log.Warn("cache purge failed", "feature", id, "cells", len(cells), "err", err)
		}
	}
	if h.hot != nil {
		h.hot.Reset(cells...)
	}
	return nil
}

func (h *Handler) deriveCells(ev WireEvent) model.Cells {
	if h.mapper == nil || ev.Feature == nil {
		return nil
	}
	bounds := ev.Feature.Geom.Bounds()
	cells, err := h.mapper.CellsForQuery(model.QueryRequest{Mode: model.ModeBBox, Rect: &bounds})
	if err != nil {
		h.log.Warn("cell derivation failed", "feature", ev.Feature.ID, "err", err)
		return nil
	}
	return cells
}
