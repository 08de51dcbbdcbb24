// Package transform maps world coordinates onto the discretized coverage grid.
package transform

import (
	"fmt"

	"github.com/dyluth/spoor/pkg/replay"
)

// Transform converts world coordinates to grid cells. It is computed once per
// map and is read-only afterwards, so it can be shared between goroutines.
type Transform struct {
	Scale  float64 // Grid cells per world unit
	TransX float64
	TransY float64
	Width  int
	Height int
}

// New computes the transform for a camera box and a target grid height.
// The grid width preserves the aspect ratio of the cropped minimap image when
// its pixel dimensions are known, otherwise the aspect ratio of the camera box.
func New(camera replay.Camera, imageWidth, imageHeight, gridHeight int) (*Transform, error) {
	if !camera.Valid() {
		return nil, fmt.Errorf("camera box has no area: %+v", camera)
	}
	if gridHeight <= 0 {
		return nil, fmt.Errorf("grid height must be positive, got %d", gridHeight)
	}

	height := float64(gridHeight)
	scale := height / camera.Height()

	width := int(camera.Width() * scale)
	if imageWidth > 0 && imageHeight > 0 {
		width = int(float64(imageWidth) * height / float64(imageHeight))
	}
	if width <= 0 {
		return nil, fmt.Errorf("grid width collapsed to %d", width)
	}

	w := float64(width)
	return &Transform{
		Scale:  scale,
		TransX: w/2 + scale*(camera.Left+camera.Width()/2),
		TransY: height/2 + scale*(camera.Bottom+camera.Height()/2),
		Width:  width,
		Height: gridHeight,
	}, nil
}

// Raw converts world (x, y) to grid coordinates without wrapping. Grid y grows
// downwards: the top edge of the camera box maps to row 0.
func (t *Transform) Raw(x, y float64) (int, int) {
	gx := int(float64(t.Width) - t.TransX + t.Scale*x)
	gy := int(t.TransY - t.Scale*y)
	return gx, gy
}

// Apply converts world (x, y) to a cell inside [0, Width) x [0, Height).
// Out-of-range values wrap around rather than saturate.
func (t *Transform) Apply(x, y float64) (int, int) {
	gx, gy := t.Raw(x, y)
	return t.Wrap(gx, gy)
}

// Wrap folds a grid coordinate back into the grid with Euclidean modulo.
func (t *Transform) Wrap(gx, gy int) (int, int) {
	return mod(gx, t.Width), mod(gy, t.Height)
}

// Area returns the number of cells in the grid.
func (t *Transform) Area() int {
	return t.Width * t.Height
}

func mod(v, n int) int {
	r := v % n
	if r < 0 {
		r += n
	}
	return r
}
