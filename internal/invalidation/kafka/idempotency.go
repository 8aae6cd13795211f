package kafka

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// versionDedupe keeps a per-feature version high-water mark. The
// check-and-set holds one mutex so events for the same feature arriving
// on different partitions cannot interleave between check and record.
type versionDedupe struct {
	mu  sync.Mutex
	lru *lru.Cache[string, uint64]
}

func newVersionDedupe(size int) (*versionDedupe, error) {
	if size <= 0 {
		size = 4096
	}
	c, err := lru.New[string, uint64](size)
	if err != nil {
		return nil, err
	}
	return &versionDedupe{lru: c}, nil
}

// shouldApply reports whether v is newer than the last seen version for
// key, recording it when it is.
func (d *versionDedupe) shouldApply(key string, v uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if last, ok := d.lru.Get(key); ok && v <= last {
		return false
	}
	d.lru.Add(key, v)
	return true
}
