// internal/source/cell.go
package source

import (
	"fmt"
	"unsafe"

	"github.com/CedricK04/UMS/internal/datatype"
)

// Cell is caller-owned storage for one traced value. The engine samples it
// through Ptr, so a Cell must not move or be freed while registered.
//
// Not safe for concurrent use: write it from the goroutine that calls
// engine Update.
type Cell struct {
	v    uint64 // 8-byte aligned backing for every scalar kind
	kind datatype.Kind
}

// NewCell returns a zeroed cell for kind.
func NewCell(kind datatype.Kind) (*Cell, error) {
	if datatype.Width(kind) == 0 {
		return nil, fmt.Errorf("source: kind %s cannot back a cell", kind)
	}
	return &Cell{kind: kind}, nil
}

func (c *Cell) Kind() datatype.Kind { return c.kind }

// Ptr is the location to register with the engine.
func (c *Cell) Ptr() unsafe.Pointer { return unsafe.Pointer(&c.v) }

// Set stores x converted to the cell's kind.
func (c *Cell) Set(x float64) {
	p := c.Ptr()
	switch c.kind {
	case datatype.Uint8:
		*(*uint8)(p) = uint8(x)
	case datatype.Uint16:
		*(*uint16)(p) = uint16(x)
	case datatype.Uint32:
		*(*uint32)(p) = uint32(x)
	case datatype.Uint64:
		*(*uint64)(p) = uint64(x)
	case datatype.Int8:
		*(*int8)(p) = int8(x)
	case datatype.Int16:
		*(*int16)(p) = int16(x)
	case datatype.Int32:
		*(*int32)(p) = int32(x)
	case datatype.Int64:
		*(*int64)(p) = int64(x)
	case datatype.Float32:
		*(*float32)(p) = float32(x)
	case datatype.Float64:
		*(*float64)(p) = x
	case datatype.Bool:
		*(*bool)(p) = x != 0
	}
}

// SetBool stores b; non-bool kinds get 0 or 1.
func (c *Cell) SetBool(b bool) {
	if b {
		c.Set(1)
	} else {
		c.Set(0)
	}
}

// Value reads the cell back as float64.
func (c *Cell) Value() float64 {
	p := c.Ptr()
	switch c.kind {
	case datatype.Uint8:
		return float64(*(*uint8)(p))
	case datatype.Uint16:
		return float64(*(*uint16)(p))
	case datatype.Uint32:
		return float64(*(*uint32)(p))
	case datatype.Uint64:
		return float64(*(*uint64)(p))
	case datatype.Int8:
		return float64(*(*int8)(p))
	case datatype.Int16:
		return float64(*(*int16)(p))
	case datatype.Int32:
		return float64(*(*int32)(p))
	case datatype.Int64:
		return float64(*(*int64)(p))
	case datatype.Float32:
		return float64(*(*float32)(p))
	case datatype.Float64:
		return *(*float64)(p)
	case datatype.Bool:
		if *(*bool)(p) {
			return 1
		}
	}
	return 0
}

// Registers is how many Modbus registers hold a value of the cell's kind.
func (c *Cell) Registers() int {
	return (datatype.Width(c.kind) + 1) / 2
}

// SetRaw stores the bit pattern carried by Modbus registers: words are
// big-endian and the high word comes first. One-byte kinds use the low byte
// of the first register.
func (c *Cell) SetRaw(regs []uint16) error {
	n := c.Registers()
	if len(regs) < n {
		return fmt.Errorf("source: %s needs %d registers, got %d", c.kind, n, len(regs))
	}

	var bits uint64
	for _, r := range regs[:n] {
		bits = bits<<16 | uint64(r)
	}

	p := c.Ptr()
	switch datatype.Width(c.kind) {
	case 1:
		if c.kind == datatype.Bool {
			*(*bool)(p) = bits&0xFF != 0
		} else {
			*(*uint8)(p) = uint8(bits)
		}
	case 2:
		*(*uint16)(p) = uint16(bits)
	case 4:
		*(*uint32)(p) = uint32(bits)
	case 8:
		*(*uint64)(p) = bits
	}
	return nil
}
