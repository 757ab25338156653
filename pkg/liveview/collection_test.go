package liveview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type hpRow struct {
	ID string `json:"id"`
	HP int    `json:"hp"`
}

func hpKey(r hpRow) string { return r.ID }

func Test_Collection_Merge(t *testing.T) {
	c := NewCollection[hpRow](hpKey)
	c.Replace([]hpRow{{"1", 5}, {"2", 8}})

	require.True(t, c.Merge(hpRow{"1", 3}))
	require.Equal(t, []hpRow{{"1", 3}, {"2", 8}}, c.Snapshot())

	// Unknown keys are ignored.
	require.False(t, c.Merge(hpRow{"3", 1}))
	require.Equal(t, 2, c.Len())
}

func Test_Collection_InsertUnknown(t *testing.T) {
	c := NewCollection[hpRow](hpKey).WithInsertUnknown()
	c.Replace([]hpRow{{"1", 5}})

	require.True(t, c.Merge(hpRow{"2", 8}))
	require.Equal(t, []hpRow{{"1", 5}, {"2", 8}}, c.Snapshot())

	row, ok := c.Get("2")
	require.True(t, ok)
	require.Equal(t, 8, row.HP)
}

func Test_Collection_UpdateRemove(t *testing.T) {
	c := NewCollection[hpRow](hpKey)
	c.Replace([]hpRow{{"1", 5}, {"2", 8}, {"3", 1}})

	require.True(t, c.Update("2", func(r *hpRow) { r.HP -= 3 }))
	require.False(t, c.Update("9", func(r *hpRow) { r.HP = 0 }))

	require.True(t, c.Remove("1"))
	require.False(t, c.Remove("1"))
	require.Equal(t, []hpRow{{"2", 5}, {"3", 1}}, c.Snapshot())

	row, ok := c.Get("3")
	require.True(t, ok)
	require.Equal(t, 1, row.HP)
}

func Test_Collection_Listeners(t *testing.T) {
	c := NewCollection[hpRow](hpKey)

	var snapshots [][]hpRow
	c.OnChange(func(rows []hpRow) {
		// Listeners may read the collection.
		require.Equal(t, len(rows), c.Len())
		snapshots = append(snapshots, rows)
	})

	c.Replace([]hpRow{{"1", 5}})
	c.Merge(hpRow{"1", 4})
	c.Merge(hpRow{"2", 4})

	require.Len(t, snapshots, 2)
	require.Equal(t, []hpRow{{"1", 4}}, snapshots[1])
}

func Test_Collection_Close(t *testing.T) {
	c := NewCollection[hpRow](hpKey)
	c.Replace([]hpRow{{"1", 5}})

	called := false
	c.OnChange(func([]hpRow) { called = true })
	c.Close()

	require.True(t, c.Closed())
	require.False(t, c.Replace(nil))
	require.False(t, c.Merge(hpRow{"1", 1}))
	require.False(t, c.Update("1", func(r *hpRow) { r.HP = 1 }))
	require.False(t, c.Remove("1"))
	require.False(t, called)
	require.Equal(t, []hpRow{{"1", 5}}, c.Snapshot())
}
