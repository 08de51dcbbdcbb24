// Package coverage tracks coverage-generating units per player and measures the
// share of the map grid they cover, minute by minute.
package coverage

// Cell is one grid cell.
type Cell struct {
	X, Y int
}

// DiskOffsets returns every integer offset (dx, dy) with dx*dx + dy*dy <= r*r,
// row by row from (-r, -r).
func DiskOffsets(r int) []Cell {
	if r < 0 {
		return nil
	}
	var out []Cell
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if dx*dx+dy*dy <= r*r {
				out = append(out, Cell{X: dx, Y: dy})
			}
		}
	}
	return out
}

// Templates caches disk offsets by radius. Build it up front with Precompute
// before sharing it between goroutines.
type Templates struct {
	byRadius map[int][]Cell
}

// NewTemplates creates an empty cache.
func NewTemplates() *Templates {
	return &Templates{byRadius: make(map[int][]Cell)}
}

// Precompute builds the templates for every radius given.
func (t *Templates) Precompute(radii ...int) {
	for _, r := range radii {
		t.For(r)
	}
}

// For returns the template for radius r, building it on first use.
func (t *Templates) For(r int) []Cell {
	if cells, ok := t.byRadius[r]; ok {
		return cells
	}
	cells := DiskOffsets(r)
	t.byRadius[r] = cells
	return cells
}

// Len returns the number of cached radii.
func (t *Templates) Len() int {
	return len(t.byRadius)
}
