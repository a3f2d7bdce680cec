// internal/poller/types.go
package poller

import (
	"time"

	"github.com/CedricK04/UMS/internal/source"
)

// ReadBlock describes one Modbus read geometry.
// Geometry only: no semantics.
type ReadBlock struct {
	FC       uint8
	Address  uint16
	Quantity uint16
}

// BlockResult is the raw result of a single read.
type BlockResult struct {
	FC       uint8
	Address  uint16
	Quantity uint16

	// Exactly one of these is used depending on FC.
	Bits      []bool   // FC 1,2
	Registers []uint16 // FC 3,4
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	Source string
	At     time.Time

	Blocks []BlockResult
	Err    error // non-nil means the poll cycle failed
}

// Binding maps a device address onto a traced cell.
// Bit areas (FC 1,2) fill the cell from one bit; register areas (FC 3,4)
// from Cell.Registers() consecutive registers.
type Binding struct {
	Cell    *source.Cell
	FC      uint8
	Address uint16
}
