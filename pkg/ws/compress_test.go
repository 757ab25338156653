package ws_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/pkg/ws"
)

func TestCompress(t *testing.T) {
	data := []byte(`{"o":"change","s":1,"d":{"table":"characters"}}`)

	compressed, err := ws.Compress(data)
	require.NoError(t, err)

	got, err := ws.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, got)

	_, err = ws.Decompress([]byte("not zlib"))
	require.Error(t, err)
}
