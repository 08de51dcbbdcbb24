package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskOffsets(t *testing.T) {
	tests := []struct {
		radius   int
		expected int
	}{
		{radius: 0, expected: 1},
		{radius: 1, expected: 5},
		{radius: 4, expected: 49},
		{radius: 6, expected: 113},
		{radius: 10, expected: 317},
		{radius: 24, expected: 1793},
	}

	for _, tt := range tests {
		cells := DiskOffsets(tt.radius)
		assert.Len(t, cells, tt.expected, "radius %d", tt.radius)
		for _, c := range cells {
			require.LessOrEqual(t, c.X*c.X+c.Y*c.Y, tt.radius*tt.radius)
		}
	}

	assert.Nil(t, DiskOffsets(-1))
}

func TestDiskOffsetsDeterministic(t *testing.T) {
	assert.Equal(t, DiskOffsets(10), DiskOffsets(10))
}

func TestTemplatesCacheByRadius(t *testing.T) {
	tpl := NewTemplates()
	tpl.Precompute(10, 6, 10)
	assert.Equal(t, 2, tpl.Len())

	first := tpl.For(10)
	second := tpl.For(10)
	require.NotEmpty(t, first)
	assert.Same(t, &first[0], &second[0], "template is built once and reused")

	tpl.For(4)
	assert.Equal(t, 3, tpl.Len())
}
