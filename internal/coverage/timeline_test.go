package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gen(id int64) Generator {
	return Generator{UnitID: id, Type: "CreepTumor"}
}

func TestTimelineKeepsFullSnapshots(t *testing.T) {
	var tl Timeline
	assert.Nil(t, tl.Latest())

	tl.Add(5, gen(1))
	tl.Add(8, gen(2))
	require.True(t, tl.Remove(9, 1))
	tl.Add(12, gen(3))

	entries := tl.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, Entry{Second: 5, Generators: []Generator{gen(1)}}, entries[0])
	assert.Equal(t, Entry{Second: 8, Generators: []Generator{gen(1), gen(2)}}, entries[1])
	assert.Equal(t, Entry{Second: 9, Generators: []Generator{gen(2)}}, entries[2])
	assert.Equal(t, Entry{Second: 12, Generators: []Generator{gen(2), gen(3)}}, entries[3])
}

func TestTimelineRemoveUnknownIsNoop(t *testing.T) {
	var tl Timeline
	assert.False(t, tl.Remove(3, 1), "empty timeline")

	tl.Add(5, gen(1))
	assert.False(t, tl.Remove(6, 2))
	assert.Equal(t, 1, tl.Len(), "no entry appended")
}

func TestTimelineRemoveFirstMatchOnly(t *testing.T) {
	var tl Timeline
	tl.Add(1, gen(1))
	tl.Add(2, gen(1))
	require.True(t, tl.Remove(3, 1))
	assert.Equal(t, []Generator{gen(1)}, tl.Latest())
}

func TestReduceByMinute(t *testing.T) {
	var tl Timeline
	tl.Add(5, gen(1))
	tl.Add(59, gen(2))
	tl.Add(70, gen(3))
	tl.Remove(100, 1)
	tl.Add(200, gen(4))

	reduced := tl.ReduceByMinute()
	require.Len(t, reduced, 3, "one entry per minute with a change")

	assert.Equal(t, 59, reduced[0].Second)
	assert.Equal(t, []Generator{gen(1), gen(2)}, reduced[0].Generators)

	assert.Equal(t, 100, reduced[1].Second)
	assert.Equal(t, []Generator{gen(2), gen(3)}, reduced[1].Generators)

	assert.Equal(t, 3, reduced[2].Minute())
	assert.Equal(t, []Generator{gen(2), gen(3), gen(4)}, reduced[2].Generators)
}

func TestReduceByMinuteEmpty(t *testing.T) {
	var tl Timeline
	assert.Empty(t, tl.ReduceByMinute())
}
