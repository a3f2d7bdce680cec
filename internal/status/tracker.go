// internal/status/tracker.go
package status

import (
	"errors"
	"sync"
)

// Tracker owns the link status state machine:
//
//	send OK    → Health OK, error code and seconds reset
//	send error → Health Error, error code updated
//	Tick (1Hz) → seconds_in_error++ while not OK, saturating
//
// Observe runs on the transmit goroutine, Tick on the reporter; both are
// safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	snap     Snapshot
	reported Snapshot
}

// NewTracker starts in HealthUnknown.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe records one frame outcome. changed reports a health or error
// code transition; counters alone never count as a change.
func (t *Tracker) Observe(err error) (s Snapshot, changed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil {
		t.snap.FramesSent++

		// Recovery / OK
		if t.snap.Health != HealthOK {
			t.snap.Health = HealthOK
			changed = true
		}
		if t.snap.LastErrorCode != 0 {
			t.snap.LastErrorCode = 0
			changed = true
		}
		if t.snap.SecondsInError != 0 {
			t.snap.SecondsInError = 0
			changed = true
		}
		return t.snap, changed
	}

	t.snap.FramesDropped++

	if t.snap.Health != HealthError {
		t.snap.Health = HealthError
		changed = true
	}
	code := ErrorCode(err)
	if t.snap.LastErrorCode != code {
		t.snap.LastErrorCode = code
		changed = true
	}

	// NOTE: seconds_in_error increments on Tick only.
	return t.snap, changed
}

// Tick advances seconds_in_error while not OK. changed reports anything
// that differs from the last MarkReported snapshot.
func (t *Tracker) Tick() (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.Health != HealthOK && t.snap.SecondsInError < MaxSecondsInError {
		t.snap.SecondsInError++
	}
	return t.snap, t.snap != t.reported
}

// MarkReported records s as delivered.
func (t *Tracker) MarkReported(s Snapshot) {
	t.mu.Lock()
	t.reported = s
	t.mu.Unlock()
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns 1 (generic error).
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }
	type coderC interface{ ModbusCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}
	var c coderC
	if errors.As(err, &c) {
		return c.ModbusCode()
	}

	return 1
}
