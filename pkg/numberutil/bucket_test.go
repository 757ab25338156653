package numberutil_test

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/pkg/numberutil"
)

func TestBucketFrom(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	id := node.Generate().Int64()
	require.Equal(t, numberutil.BucketFrom(0), numberutil.BucketFrom(id))
	require.Equal(t, time.Now().UnixMilli()/numberutil.BucketDuration, numberutil.BucketFrom(0))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 0, numberutil.Clamp(-15, 0, 10))
	require.Equal(t, 10, numberutil.Clamp(25, 0, 10))
	require.Equal(t, 7, numberutil.Clamp(7, 0, 10))
}
