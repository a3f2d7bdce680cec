// internal/handshake/handshake_test.go
package handshake

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/CedricK04/UMS/internal/datatype"
	"github.com/CedricK04/UMS/internal/registry"
	"github.com/CedricK04/UMS/internal/sample"
)

func layout(t *testing.T) *registry.Registry {
	t.Helper()
	var (
		a float32
		b uint16
		c float64
	)
	reg := &registry.Registry{}
	_, err := reg.Register(registry.Ref(&a), "temp", datatype.Float32)
	require.NoError(t, err)
	_, err = reg.Register(registry.Ref(&b), "rpm", datatype.Uint16)
	require.NoError(t, err)
	_, err = reg.Register(registry.Ref(&c), "pos", datatype.Float64)
	require.NoError(t, err)
	return reg
}

func TestBuild_Offsets(t *testing.T) {
	reg := layout(t)

	h := Build(reg.Channels(), sample.FramingCounted, reg.Fingerprint())

	require.Equal(t, Version, h.Version)
	require.Equal(t, "counted", h.Framing)
	require.Equal(t, reg.Fingerprint(), h.Fingerprint)
	require.Equal(t, 5+4+2+8, h.FrameSize)
	require.Equal(t, []int{4, 2, 8}, h.Widths())

	require.Len(t, h.Channels, 3)
	require.Equal(t, 5, h.Channels[0].Offset)
	require.Equal(t, 9, h.Channels[1].Offset)
	require.Equal(t, 11, h.Channels[2].Offset)
	require.Equal(t, "rpm", h.Channels[1].Label)
	require.Equal(t, "uint16", h.Channels[1].KindName)

	_, err := uuid.Parse(h.Session)
	require.NoError(t, err)
}

func TestBuild_Compact(t *testing.T) {
	reg := layout(t)
	h := Build(reg.Channels(), sample.FramingCompact, 0)

	require.Equal(t, 4, h.Channels[0].Offset)
	require.Equal(t, sample.FrameSize(sample.FramingCompact, reg.PayloadSize()), h.FrameSize)
}

func TestEncode_Decode(t *testing.T) {
	reg := layout(t)
	h := Build(reg.Channels(), sample.FramingCounted, reg.Fingerprint())

	msg, err := Encode(h)
	require.NoError(t, err)
	require.True(t, IsHandshake(msg))

	got, err := Decode(msg)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("UM"))
	require.ErrorIs(t, err, ErrTruncated)

	_, err = Decode([]byte("XXXX\x00\x00"))
	require.ErrorIs(t, err, ErrBadMagic)

	_, err = Decode([]byte("UMSH\x00\x10\x01"))
	require.ErrorIs(t, err, ErrTruncated)

	require.False(t, IsHandshake([]byte{0, 0, 0, 0, 1}))
}
