package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotIDs(s *Snapshot) []string {
	ids := make([]string, 0, s.Len())
	for _, r := range s.Records() {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestSnapshot_KeepsLoadOrder(t *testing.T) {
	snap := NewSnapshot([]Record{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	assert.Equal(t, []string{"a", "b", "c"}, snapshotIDs(snap))

	snap.Append(&Record{ID: "d"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, snapshotIDs(snap))
}

func TestSnapshot_DoesNotAliasLoadedSlice(t *testing.T) {
	loaded := []Record{{ID: "a", Quantity: 1}}
	snap := NewSnapshot(loaded)

	snap.Get("a").Quantity = 5
	assert.Equal(t, 1, loaded[0].Quantity)
	assert.Equal(t, 5, snap.Get("a").Quantity)
}

func TestSnapshot_Remove(t *testing.T) {
	snap := NewSnapshot([]Record{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	require.True(t, snap.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, snapshotIDs(snap))
	assert.Nil(t, snap.Get("b"))

	assert.False(t, snap.Remove("missing"))
	assert.Equal(t, 2, snap.Len())
}
