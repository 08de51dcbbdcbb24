package coverage

import (
	"fmt"

	"github.com/dyluth/spoor/internal/transform"
)

// Translation is the sign used when moving a disk template onto a generator.
type Translation string

const (
	// TranslateAdd places offset (dx, dy) at (x+dx, y+dy).
	TranslateAdd Translation = "add"

	// TranslateSubtract places offset (dx, dy) at (dx-x, dy-y).
	TranslateSubtract Translation = "subtract"
)

// Grid measures covered cells on a transformed map grid.
type Grid struct {
	transform   *transform.Transform
	templates   *Templates
	radii       map[string]int
	translation Translation
}

// NewGrid creates a grid. radii maps generator type to influence radius in cells.
func NewGrid(t *transform.Transform, templates *Templates, radii map[string]int, translation Translation) *Grid {
	if translation == "" {
		translation = TranslateAdd
	}
	return &Grid{transform: t, templates: templates, radii: radii, translation: translation}
}

// Covered returns the set of cells covered by any generator in gens.
func (g *Grid) Covered(gens []Generator) (map[Cell]struct{}, error) {
	cells := make(map[Cell]struct{})
	for _, gen := range gens {
		r, ok := g.radii[gen.Type]
		if !ok {
			return nil, fmt.Errorf("no radius configured for generator type %q", gen.Type)
		}
		cx, cy := g.transform.Apply(gen.X, gen.Y)
		for _, off := range g.templates.For(r) {
			var x, y int
			if g.translation == TranslateSubtract {
				x, y = off.X-cx, off.Y-cy
			} else {
				x, y = off.X+cx, off.Y+cy
			}
			x, y = g.transform.Wrap(x, y)
			cells[Cell{X: x, Y: y}] = struct{}{}
		}
	}
	return cells, nil
}

// Percent returns the share of the grid covered by gens, in percent.
func (g *Grid) Percent(gens []Generator) (float64, error) {
	cells, err := g.Covered(gens)
	if err != nil {
		return 0, err
	}
	return float64(len(cells)) / float64(g.transform.Area()) * 100, nil
}
