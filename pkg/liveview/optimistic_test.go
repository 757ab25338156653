package liveview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Optimistic(t *testing.T) {
	ctx := context.Background()
	server := []hpRow{{"1", 10}}

	c := NewCollection[hpRow](hpKey)
	c.Replace(server)
	resync := ResyncWith(c, func(context.Context) ([]hpRow, error) {
		return server, nil
	})

	t.Run("success", func(t *testing.T) {
		err := Optimistic(ctx, c, "1",
			func(r *hpRow) { r.HP = 7 },
			func(context.Context) error {
				server = []hpRow{{"1", 7}}
				return nil
			},
			resync,
		)
		require.NoError(t, err)

		row, _ := c.Get("1")
		require.Equal(t, 7, row.HP)
	})

	t.Run("failure resyncs", func(t *testing.T) {
		writeErr := errors.New("rejected")
		var seen int
		err := Optimistic(ctx, c, "1",
			func(r *hpRow) { r.HP = 0 },
			func(context.Context) error {
				row, _ := c.Get("1")
				seen = row.HP
				return writeErr
			},
			resync,
		)
		require.ErrorIs(t, err, writeErr)
		require.Equal(t, 0, seen)

		row, _ := c.Get("1")
		require.Equal(t, 7, row.HP)
	})
}
