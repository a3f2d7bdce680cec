// internal/transport/modbus/link_test.go
package modbus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// ---- fake register writer ----

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeWriter struct {
	writes []writeCall
	fail   error
}

func (f *fakeWriter) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	f.writes = append(f.writes, writeCall{unitID: unitID, addr: addr, regs: regs})
	return nil
}

// ---- tests ----

func TestPack_Layout(t *testing.T) {
	regs, err := Pack([]byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	require.Equal(t, []uint16{3, 0x0102, 0x0300}, regs)

	regs, err = Pack(nil)
	require.NoError(t, err)
	require.Equal(t, []uint16{0}, regs)
}

func TestPack_Unpack(t *testing.T) {
	for _, n := range []int{1, 2, 9, 133, MaxFrame} {
		frame := make([]byte, n)
		for i := range frame {
			frame[i] = byte(i * 7)
		}

		regs, err := Pack(frame)
		require.NoError(t, err)
		require.LessOrEqual(t, len(regs), MaxWriteRegisters)

		got, err := Unpack(regs)
		require.NoError(t, err)
		require.Equal(t, frame, got)
	}
}

func TestPack_TooLarge(t *testing.T) {
	_, err := Pack(make([]byte, MaxFrame+1))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestUnpack_Truncated(t *testing.T) {
	_, err := Unpack([]uint16{10, 0x0102})
	require.Error(t, err)

	_, err = Unpack(nil)
	require.Error(t, err)
}

func TestLink_Send(t *testing.T) {
	w := &fakeWriter{}
	l := NewLink(w, nil, LinkConfig{UnitID: 7, Address: 100})

	require.NoError(t, l.Send([]byte{0xAA, 0xBB}))
	require.Len(t, w.writes, 1)
	require.Equal(t, uint8(7), w.writes[0].unitID)
	require.Equal(t, uint16(100), w.writes[0].addr)
	require.Equal(t, []uint16{2, 0xAABB}, w.writes[0].regs)

	require.NoError(t, l.Close())
}

func TestLink_SendError(t *testing.T) {
	boom := errors.New("exception 2")
	l := NewLink(&fakeWriter{fail: boom}, nil, LinkConfig{})

	require.ErrorIs(t, l.Send([]byte{1}), boom)
}

func TestPackRegisters_BigEndian(t *testing.T) {
	require.Equal(t, []byte{0x12, 0x34, 0xAB, 0xCD}, packRegisters([]uint16{0x1234, 0xABCD}))
	require.Equal(t, []byte{0x05}, packBits([]bool{true, false, true}))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{Endpoint: "x", Mode: "ascii"})
	require.Error(t, err)
}
