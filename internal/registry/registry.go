// internal/registry/registry.go
package registry

import (
	"encoding/binary"
	"errors"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	"github.com/CedricK04/UMS/internal/datatype"
)

// MaxChannels is the fixed registry capacity.
const MaxChannels = 16

var (
	ErrNullLocation     = errors.New("registry: nil location")
	ErrNullLabel        = errors.New("registry: empty label")
	ErrInvalidKind      = errors.New("registry: kind has no payload width")
	ErrCapacityExceeded = errors.New("registry: channel capacity exhausted")
)

// ChannelID is the registration index of a channel.
type ChannelID uint8

// Channel is one traced variable.
//
// Location is a non-owning reference into caller memory. The caller must keep
// the storage alive for as long as the registry may sample it; the registry
// checks nothing beyond nil.
type Channel struct {
	Location unsafe.Pointer
	Kind     datatype.Kind
	Label    string
}

// Registry is a fixed-capacity, append-only list of channels.
// It is not safe for concurrent use; registration is foreground-only.
type Registry struct {
	channels [MaxChannels]Channel
	count    int
	payload  int
}

// Register appends a channel and returns its index.
// A failed call leaves the registry unchanged.
func (r *Registry) Register(loc unsafe.Pointer, label string, kind datatype.Kind) (ChannelID, error) {
	if loc == nil {
		return 0, ErrNullLocation
	}
	if label == "" {
		return 0, ErrNullLabel
	}
	w := datatype.Width(kind)
	if w == 0 {
		return 0, ErrInvalidKind
	}
	if r.count >= MaxChannels {
		return 0, ErrCapacityExceeded
	}

	id := ChannelID(r.count)
	r.channels[r.count] = Channel{Location: loc, Kind: kind, Label: label}
	r.count++
	r.payload += w

	return id, nil
}

// Count returns the number of registered channels.
func (r *Registry) Count() int {
	return r.count
}

// PayloadSize is the sum of the registered kinds' widths.
func (r *Registry) PayloadSize() int {
	return r.payload
}

// Channel returns the channel registered under id.
func (r *Registry) Channel(id ChannelID) (Channel, bool) {
	if int(id) >= r.count {
		return Channel{}, false
	}
	return r.channels[id], true
}

// Channels returns a copy of the registered channels in registration order.
func (r *Registry) Channels() []Channel {
	out := make([]Channel, r.count)
	copy(out, r.channels[:r.count])
	return out
}

// Clear drops every channel. Prior ChannelIDs become invalid.
func (r *Registry) Clear() {
	r.channels = [MaxChannels]Channel{}
	r.count = 0
	r.payload = 0
}

// Bytes returns a view of the channel's live memory, exactly Width(kind) long.
func Bytes(ch Channel) []byte {
	return unsafe.Slice((*byte)(ch.Location), datatype.Width(ch.Kind))
}

// Ref converts a typed pointer into a registry location.
func Ref[T datatype.Scalar](p *T) unsafe.Pointer {
	if p == nil {
		return nil
	}
	return unsafe.Pointer(p)
}

// Fingerprint identifies the channel layout (kinds and labels, in order).
// Two registries with the same layout produce the same value.
func (r *Registry) Fingerprint() uint64 {
	d := xxhash.New()

	var hdr [5]byte
	for i := 0; i < r.count; i++ {
		ch := r.channels[i]
		hdr[0] = byte(ch.Kind)
		binary.LittleEndian.PutUint32(hdr[1:], uint32(len(ch.Label)))
		_, _ = d.Write(hdr[:])
		_, _ = d.WriteString(ch.Label)
	}

	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(r.count))
	_, _ = d.Write(n[:])

	return d.Sum64()
}
