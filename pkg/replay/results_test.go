package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachLookup(t *testing.T) {
	r := NewResults()
	countKey := NewKey[int]("test.count")
	mapKey := NewKey[map[int]int]("test.by_minute")

	_, ok := Lookup(r, 1, countKey)
	assert.False(t, ok, "absent field must report not found")

	Attach(r, 1, countKey, 3)
	Attach(r, 1, mapKey, map[int]int{0: 4})
	Attach(r, 2, countKey, 8)

	v, ok := Lookup(r, 1, countKey)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = Lookup(r, 2, countKey)
	require.True(t, ok)
	assert.Equal(t, 8, v)

	m, ok := Lookup(r, 1, mapKey)
	require.True(t, ok)
	assert.Equal(t, 4, m[0])

	assert.Equal(t, []string{"test.by_minute", "test.count"}, r.Fields(1))
	assert.Empty(t, r.Fields(7))
}

func TestLookupTypeMismatch(t *testing.T) {
	r := NewResults()
	Attach(r, 1, NewKey[int]("shared.name"), 3)

	_, ok := Lookup(r, 1, NewKey[string]("shared.name"))
	assert.False(t, ok)
}

func TestShare(t *testing.T) {
	r := NewResults()
	key := NewKey[string]("map.name")

	_, ok := Shared(r, key)
	assert.False(t, ok)

	Share(r, key, "Lost Temple")
	v, ok := Shared(r, key)
	require.True(t, ok)
	assert.Equal(t, "Lost Temple", v)
}

func TestPublishSelectedCopies(t *testing.T) {
	r := NewResults()
	sel := []Entity{{ID: 1}, {ID: 2}}
	r.PublishSelected(4, sel)
	sel[0].ID = 99

	got, ok := r.Selected(4)
	require.True(t, ok)
	assert.Equal(t, []Entity{{ID: 1}, {ID: 2}}, got)

	_, ok = r.Selected(5)
	assert.False(t, ok)
}
