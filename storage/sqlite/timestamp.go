package sqlite

import (
	"math"
	"time"
)

// cacheEpoch anchors the REAL timestamp column. Stored values are seconds
// since 2001-01-01T00:00:00Z, the epoch the cache file format has always
// used, so existing cache databases keep their meaning.
var cacheEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// encodeTimestamp converts t to seconds since the cache epoch, truncated to
// microsecond precision. Microseconds survive the trip through a float64
// column for any realistic date; nanoseconds do not.
func encodeTimestamp(t time.Time) float64 {
	return float64(t.Sub(cacheEpoch).Microseconds()) / 1e6
}

// decodeTimestamp converts a stored column value back to a UTC time.
func decodeTimestamp(secs float64) time.Time {
	return cacheEpoch.Add(time.Duration(math.Round(secs*1e6)) * time.Microsecond)
}
