// Package hotness defines the interface for tracking how frequently
// query cells are touched.
package hotness

type Interface interface {
	// Inc records one touch of a cell.
	Inc(cell string)
	// Score returns the current decayed touch score for a cell.
	Score(cell string) float64
	// Reset forgets the given cells.
	Reset(cells ...string)
}
