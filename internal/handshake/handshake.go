// internal/handshake/handshake.go
package handshake

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/CedricK04/UMS/internal/datatype"
	"github.com/CedricK04/UMS/internal/endian"
	"github.com/CedricK04/UMS/internal/registry"
	"github.com/CedricK04/UMS/internal/sample"
)

// Version is the handshake schema version.
const Version = 1

// Magic prefixes every handshake message so a receiver can tell it apart
// from a sample frame.
const Magic = "UMSH"

const headerSize = len(Magic) + 2

var (
	ErrBadMagic  = errors.New("handshake: bad magic")
	ErrTruncated = errors.New("handshake: truncated message")
)

// Channel describes one registered channel.
type Channel struct {
	Index    int    `msgpack:"i"`
	Label    string `msgpack:"l"`
	Kind     uint8  `msgpack:"k"`
	KindName string `msgpack:"kn"`
	Width    int    `msgpack:"w"`
	Offset   int    `msgpack:"o"` // byte offset of the field inside a frame
}

// Handshake tells a receiver how to decode the frames that follow.
type Handshake struct {
	Version     int       `msgpack:"v"`
	Session     string    `msgpack:"s"`
	Framing     string    `msgpack:"f"`
	ByteOrder   string    `msgpack:"bo"`
	Fingerprint uint64    `msgpack:"fp"`
	FrameSize   int       `msgpack:"fs"`
	Channels    []Channel `msgpack:"ch"`
}

// Build describes the channel layout.
func Build(channels []registry.Channel, f sample.Framing, fingerprint uint64) Handshake {
	h := Handshake{
		Version:     Version,
		Session:     uuid.NewString(),
		Framing:     f.String(),
		ByteOrder:   endian.Host().String(),
		Fingerprint: fingerprint,
		Channels:    make([]Channel, 0, len(channels)),
	}

	off := sample.HeaderSize(f)
	for i, ch := range channels {
		w := datatype.Width(ch.Kind)
		h.Channels = append(h.Channels, Channel{
			Index:    i,
			Label:    ch.Label,
			Kind:     uint8(ch.Kind),
			KindName: ch.Kind.String(),
			Width:    w,
			Offset:   off,
		})
		off += w
	}
	h.FrameSize = off

	return h
}

// Widths lists channel widths in registration order, as sample.Decode wants.
func (h Handshake) Widths() []int {
	out := make([]int, len(h.Channels))
	for i, ch := range h.Channels {
		out[i] = ch.Width
	}
	return out
}

// Encode frames h as [magic][len u16 big-endian][msgpack body].
func Encode(h Handshake) ([]byte, error) {
	body, err := msgpack.Marshal(&h)
	if err != nil {
		return nil, fmt.Errorf("handshake: encode: %w", err)
	}
	if len(body) > 0xFFFF {
		return nil, fmt.Errorf("handshake: body of %d bytes too large", len(body))
	}

	out := make([]byte, 0, headerSize+len(body))
	out = append(out, Magic...)
	out = append(out, byte(len(body)>>8), byte(len(body)))
	return append(out, body...), nil
}

// Decode parses a message produced by Encode.
func Decode(msg []byte) (Handshake, error) {
	if len(msg) < headerSize {
		return Handshake{}, ErrTruncated
	}
	if string(msg[:len(Magic)]) != Magic {
		return Handshake{}, ErrBadMagic
	}

	n := int(msg[len(Magic)])<<8 | int(msg[len(Magic)+1])
	body := msg[headerSize:]
	if len(body) < n {
		return Handshake{}, ErrTruncated
	}

	var h Handshake
	if err := msgpack.Unmarshal(body[:n], &h); err != nil {
		return Handshake{}, fmt.Errorf("handshake: decode: %w", err)
	}
	if h.Version != Version {
		return Handshake{}, fmt.Errorf("handshake: unsupported version %d", h.Version)
	}
	return h, nil
}

// IsHandshake reports whether msg starts with the handshake magic.
func IsHandshake(msg []byte) bool {
	return len(msg) >= len(Magic) && string(msg[:len(Magic)]) == Magic
}
