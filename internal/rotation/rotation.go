// internal/rotation/rotation.go
package rotation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBusy is returned by Admit when a strategy refuses a sample while a
// transmission is outstanding.
var ErrBusy = errors.New("rotation: transmission in progress")

// Mode selects the rotation strategy.
type Mode uint8

const (
	// ModeQueue rotates three slots (write, pending, transmit) and keeps
	// the newest sample queued while a transmission is outstanding.
	ModeQueue Mode = iota

	// ModeReject rotates two slots (write, read) and refuses new samples
	// while a transmission is outstanding.
	ModeReject
)

func (m Mode) String() string {
	switch m {
	case ModeQueue:
		return "queue"
	case ModeReject:
		return "reject"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode resolves a config name. Empty selects ModeQueue.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "queue", "triple":
		return ModeQueue, nil
	case "reject", "double":
		return ModeReject, nil
	default:
		return 0, fmt.Errorf("rotation: unknown mode %q", s)
	}
}

// Roles is the role-to-slot mapping at one instant.
// Pending is -1 for strategies without a pending role.
type Roles struct {
	Write    int
	Pending  int
	Transmit int
}

// Distinct reports whether no slot is bound to two roles.
func (r Roles) Distinct() bool {
	if r.Write == r.Transmit {
		return false
	}
	if r.Pending < 0 {
		return true
	}
	return r.Pending != r.Write && r.Pending != r.Transmit
}

// Rotator is a buffer rotation strategy.
//
// Rotators hold no lock. Every method except Slots must be called inside
// the caller's exclusion region; Write may also be read by the producer
// outside it, since only the producer path moves the write role.
type Rotator interface {
	// Slots is the size of the physical slot pool.
	Slots() int

	// Write is the slot the producer fills next.
	Write() int

	// Admit gates a new sample before assembly.
	Admit() error

	// Publish hands over the freshly filled write slot. When start is
	// true, tx is the slot to transmit now.
	Publish() (tx int, start bool)

	// Complete releases the slot held by the transmitter. When start is
	// true, tx is the next slot to transmit.
	Complete() (tx int, start bool)

	// Active reports whether a transmission is outstanding.
	Active() bool

	// Superseded counts queued samples replaced before being sent.
	Superseded() uint64

	Roles() Roles

	// Reset restores the default role bindings.
	Reset()
}

// New returns the rotator for mode.
func New(m Mode) (Rotator, error) {
	switch m {
	case ModeQueue:
		q := &queue{}
		q.Reset()
		return q, nil
	case ModeReject:
		r := &reject{}
		r.Reset()
		return r, nil
	default:
		return nil, fmt.Errorf("rotation: unsupported mode %d", uint8(m))
	}
}

// MaxSlots is the largest pool any strategy uses.
const MaxSlots = 3
