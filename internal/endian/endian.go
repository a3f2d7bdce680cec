// internal/endian/endian.go
package endian

import (
	"encoding/binary"
	"unsafe"
)

// Engine combines binary.ByteOrder and binary.AppendByteOrder.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Order names a frame byte order on the wire (handshake field).
type Order uint8

const (
	Little Order = 1
	Big    Order = 2
)

func (o Order) String() string {
	switch o {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return "unknown"
	}
}

// Host probes the byte order of the running machine.
func Host() Order {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return Big
	}
	return Little
}

// Native returns the engine matching the host byte order.
//
// Frames are memory images: payload bytes are copied verbatim from traced
// variables, so the header must use the same order.
func Native() Engine {
	if Host() == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// For returns the engine for o.
func For(o Order) Engine {
	if o == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
