// internal/sample/framing.go
package sample

import (
	"fmt"
	"strings"

	"github.com/CedricK04/UMS/internal/datatype"
	"github.com/CedricK04/UMS/internal/registry"
)

// Framing selects the frame header layout.
//
//	FramingCounted: [timestamp u32][channel count u8][payload]
//	FramingCompact: [timestamp u32][payload]
//
// Both use host byte order for the timestamp. Payload bytes are copied
// verbatim from the traced variables.
type Framing uint8

const (
	FramingCounted Framing = iota
	FramingCompact
)

// TimestampSize is the width of the frame timestamp.
const TimestampSize = 4

// MaxFrameSize bounds every slot: widest header plus a full registry of
// widest kinds.
const MaxFrameSize = TimestampSize + 1 + registry.MaxChannels*datatype.MaxWidth

func (f Framing) String() string {
	switch f {
	case FramingCounted:
		return "counted"
	case FramingCompact:
		return "compact"
	default:
		return fmt.Sprintf("framing(%d)", uint8(f))
	}
}

// ParseFraming resolves a config name. Empty selects FramingCounted.
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "counted":
		return FramingCounted, nil
	case "compact":
		return FramingCompact, nil
	default:
		return 0, fmt.Errorf("sample: unknown framing %q", s)
	}
}

// HeaderSize is the number of bytes preceding the payload.
func HeaderSize(f Framing) int {
	if f == FramingCompact {
		return TimestampSize
	}
	return TimestampSize + 1
}

// FrameSize is the exact length of a frame carrying payload bytes.
func FrameSize(f Framing, payload int) int {
	return HeaderSize(f) + payload
}
