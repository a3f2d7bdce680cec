// internal/engine/clock.go
package engine

import "time"

// Clock supplies frame timestamps. It must be monotonically non-decreasing
// and may be called from any context.
type Clock interface {
	Now() uint32
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() uint32

func (f ClockFunc) Now() uint32 { return f() }

// Micros returns a Clock counting microseconds since start, wrapping at 2^32
// (about 71 minutes).
func Micros(start time.Time) Clock {
	return ClockFunc(func() uint32 {
		return uint32(time.Since(start).Microseconds())
	})
}

// Millis returns a Clock counting milliseconds since start.
func Millis(start time.Time) Clock {
	return ClockFunc(func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	})
}
