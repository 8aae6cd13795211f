// Package keys builds the normalized cache key format for query
// results.
package keys

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/geoconsole/spatial-canvas/internal/model"
)

// Query builds the cache key for a region query result. The key embeds
// the collection version, so entries written against a stale
// collection can never be served, and the touched cell set, so the
// invalidation path can purge by cell. The region itself is folded
// into an xxhash digest to keep keys bounded.
func Query(q model.QueryRequest, version uint64, cells model.Cells) string {
	d := xxhash.New()
	_, _ = d.WriteString(string(q.Mode))
	if q.Rect != nil {
		_, _ = d.WriteString(q.Rect.String())
	}
	if q.Center != nil {
		_, _ = d.WriteString(fmt.Sprintf("%.6f,%.6f,%.6f", q.Center.X, q.Center.Y, q.Radius))
	}

	cellDigest := xxhash.Sum64String(strings.Join(cells, ","))

	return fmt.Sprintf("q:%s:v%d:c%016x:r%016x", q.Mode, version, cellDigest, d.Sum64())
}

// Cell builds the per-cell purge-set key that records which query keys
// touched a cell.
func Cell(cell string) string {
	return "cell:" + sanitize(cell)
}

func sanitize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	for _, r := range s {
		var out rune
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			out = '_'
		case isAlphaNum(r) || r == ':' || r == '_' || r == '-':
			out = r
		default:
			out = '-'
		}
		if (out == '_' || out == '-') && out == prev {
			continue
		}
		b.WriteRune(out)
		prev = out
	}
	return b.String()
}

func isAlphaNum(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
