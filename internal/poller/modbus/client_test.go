// internal/poller/modbus/client_test.go
package modbus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnpackBits(t *testing.T) {
	got := unpackBits([]byte{0b0000_0101, 0b1}, 10)
	require.Equal(t, []bool{true, false, true, false, false, false, false, false, true, false}, got)

	// short payload pads with false
	require.Equal(t, []bool{true, false, false, false, false, false, false, false, false}, unpackBits([]byte{1}, 9))
}

func TestUnpackRegisters(t *testing.T) {
	got, err := unpackRegisters([]byte{0x12, 0x34, 0xAB, 0xCD}, 2)
	require.NoError(t, err)
	require.Equal(t, []uint16{0x1234, 0xABCD}, got)

	_, err = unpackRegisters([]byte{0x12}, 1)
	require.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)

	_, err = New(Config{Endpoint: "x", Mode: "udp"})
	require.Error(t, err)

	var c *Client
	require.NoError(t, c.Close())
}
