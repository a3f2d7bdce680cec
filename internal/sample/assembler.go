// internal/sample/assembler.go
package sample

import (
	"errors"
	"fmt"

	"github.com/CedricK04/UMS/internal/endian"
	"github.com/CedricK04/UMS/internal/registry"
)

var (
	ErrNoChannels  = errors.New("sample: no channels registered")
	ErrShortBuffer = errors.New("sample: buffer smaller than frame")
	ErrShortFrame  = errors.New("sample: frame shorter than layout")
)

// Sample describes one assembled frame.
type Sample struct {
	Timestamp uint32
	Len       int
}

var native = endian.Native()

// Assemble writes one frame into dst: header, then every channel's current
// bytes in registration order.
//
// No synchronization happens here. The caller must own dst exclusively for
// the duration of the call.
func Assemble(dst []byte, reg *registry.Registry, ts uint32, f Framing) (Sample, error) {
	n := reg.Count()
	if n == 0 {
		return Sample{}, ErrNoChannels
	}

	size := FrameSize(f, reg.PayloadSize())
	if len(dst) < size {
		return Sample{}, fmt.Errorf("%w: have=%d want=%d", ErrShortBuffer, len(dst), size)
	}

	native.PutUint32(dst[0:TimestampSize], ts)
	off := TimestampSize
	if f == FramingCounted {
		dst[off] = byte(n)
		off++
	}

	for id := 0; id < n; id++ {
		ch, _ := reg.Channel(registry.ChannelID(id))
		off += copy(dst[off:], registry.Bytes(ch))
	}

	return Sample{Timestamp: ts, Len: off}, nil
}

// Decode splits a frame back into its timestamp and per-channel fields.
// widths lists the channel widths in registration order.
func Decode(frame []byte, f Framing, widths []int) (uint32, [][]byte, error) {
	hdr := HeaderSize(f)
	if len(frame) < hdr {
		return 0, nil, ErrShortFrame
	}

	ts := native.Uint32(frame[0:TimestampSize])

	if f == FramingCounted && int(frame[TimestampSize]) != len(widths) {
		return 0, nil, fmt.Errorf(
			"sample: channel count mismatch: frame=%d layout=%d",
			frame[TimestampSize],
			len(widths),
		)
	}

	fields := make([][]byte, 0, len(widths))
	off := hdr
	for _, w := range widths {
		if off+w > len(frame) {
			return 0, nil, ErrShortFrame
		}
		fields = append(fields, frame[off:off+w])
		off += w
	}

	return ts, fields, nil
}
