// Package store holds the feature and layer collections. It is the
// single owner of mutable canvas state; every other package reads
// snapshots taken here.
package store

import (
	"fmt"
	"os"
	"sync"

	"github.com/geoconsole/spatial-canvas/internal/geojson"
	"github.com/geoconsole/spatial-canvas/internal/model"
)

type Store struct {
	mu       sync.RWMutex
	features []model.Feature
	layers   []model.Layer
	version  uint64
}

func New(features []model.Feature, layers []model.Layer) *Store {
	s := &Store{
		features: append([]model.Feature(nil), features...),
		layers:   append([]model.Layer(nil), layers...),
		version:  1,
	}
	return s
}

// Features returns a snapshot of the collection in insertion order.
func (s *Store) Features() []model.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Feature(nil), s.features...)
}

// Layers returns a snapshot with counts recomputed from the feature
// collection. The stored count is advisory only.
func (s *Store) Layers() []model.Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.layers))
	for _, f := range s.features {
		counts[f.Layer]++
	}
	out := make([]model.Layer, len(s.layers))
	for i, l := range s.layers {
		l.Count = counts[l.ID]
		out[i] = l
	}
	return out
}

func (s *Store) Layer(id string) (model.Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.layers {
		if l.ID == id {
			return l, true
		}
	}
	return model.Layer{}, false
}

func (s *Store) SetLayerVisible(id string, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.layers {
		if s.layers[i].ID == id {
			s.layers[i].Visible = visible
			return nil
		}
	}
	return fmt.Errorf("layer %q not found", id)
}

// Version is bumped on every feature mutation. Cache keys embed it, so
// entries written against an older collection are never served.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Import merges features into the collection by id: existing ids are
// replaced in place, new ids appended. Invalid features reject the
// whole batch.
func (s *Store) Import(features []model.Feature) error {
	for _, f := range features {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = geojson.Merge(s.features, features)
	s.version++
	return nil
}

// Upsert inserts or replaces a single feature.
func (s *Store) Upsert(f model.Feature) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = geojson.Merge(s.features, []model.Feature{f})
	s.version++
	return nil
}

// Delete removes a feature by id. Deleting an unknown id is a no-op
// that still bumps the version, since the caller believed the
// collection changed.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.features {
		if f.ID == id {
			s.features = append(s.features[:i], s.features[i+1:]...)
			break
		}
	}
	s.version++
}

// LoadFile replaces the feature collection with the contents of a
// GeoJSON FeatureCollection file.
func LoadFile(path string) ([]model.Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	features, err := geojson.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return features, nil
}
