package numberutil

import (
	"time"

	"github.com/bwmarrin/snowflake"

	mathUtil "github.com/pkg/math"
)

const BucketDuration int64 = 1000 * 60 * 60 * 24 * 10 // 10 days

// BucketFrom returns the time bucket of a snowflake id. A zero id maps to the
// current bucket.
func BucketFrom(id int64) int64 {
	if id != 0 {
		sfID := snowflake.ParseInt64(id)
		return sfID.Time() / BucketDuration
	}

	return time.Now().UnixMilli() / BucketDuration
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return mathUtil.MinInt(mathUtil.MaxInt(v, lo), hi)
}
