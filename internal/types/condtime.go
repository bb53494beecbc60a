package types

import "math"

// Timestamps are 64-bit unix seconds. TimeUnset marks "never deactivated"
// on the transaction axis and "open interval" on the validity axis; the
// column value stays 0 for compatibility with the physical layout, but code
// must compare against the named sentinel, never a bare literal.
const (
	TimeUnset     int64 = 0
	TimeUnbounded int64 = math.MaxInt64
)

func IsSet(t int64) bool { return t != TimeUnset }
