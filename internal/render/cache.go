package render

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/geoconsole/spatial-canvas/internal/canvas"
	"github.com/geoconsole/spatial-canvas/internal/model"
)

// FrameCache keeps recently encoded PNG frames. Frames are pure
// functions of the drawn state, so a digest of that state is a safe
// cache key.
type FrameCache struct {
	lru *lru.Cache[uint64, []byte]
}

func NewFrameCache(size int) (*FrameCache, error) {
	if size <= 0 {
		size = 64
	}
	c, err := lru.New[uint64, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("frame cache: %w", err)
	}
	return &FrameCache{lru: c}, nil
}

func (c *FrameCache) Get(key uint64) ([]byte, bool) {
	return c.lru.Get(key)
}

func (c *FrameCache) Add(key uint64, frame []byte) {
	c.lru.Add(key, frame)
}

func (c *FrameCache) Len() int { return c.lru.Len() }

// FrameKey digests everything a frame depends on: the collection
// version, layer styling and visibility, and the interaction state.
// Query results are excluded -- they are not drawn.
func FrameKey(version uint64, layers []model.Layer, st canvas.State) uint64 {
	d := xxhash.New()

	writeU64(d, version)
	for _, l := range layers {
		_, _ = d.WriteString(l.ID)
		_, _ = d.WriteString(l.Color)
		if l.Visible {
			_, _ = d.WriteString("1")
		} else {
			_, _ = d.WriteString("0")
		}
	}

	_, _ = d.WriteString(string(st.Mode))
	writeCoordPtr(d, st.DragStart)
	writeCoordPtr(d, st.DragEnd)
	if st.Selected != nil {
		_, _ = d.WriteString(st.Selected.ID)
	}
	for _, c := range st.Route {
		writeCoord(d, c)
	}

	return d.Sum64()
}

func writeU64(d *xxhash.Digest, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, _ = d.Write(b[:])
}

func writeCoord(d *xxhash.Digest, c model.Coordinate) {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[:8], uint64(int64(c.X*1000)))
	binary.LittleEndian.PutUint64(b[8:], uint64(int64(c.Y*1000)))
	_, _ = d.Write(b[:])
}

func writeCoordPtr(d *xxhash.Digest, c *model.Coordinate) {
	if c == nil {
		_, _ = d.WriteString("-")
		return
	}
	writeCoord(d, *c)
}
