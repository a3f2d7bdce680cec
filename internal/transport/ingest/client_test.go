// internal/transport/ingest/client_test.go
package ingest

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildPacket_Layout(t *testing.T) {
	pkt, err := BuildPacket([]byte{0xAA, 0xBB, 0xCC})
	require.NoError(t, err)
	require.Equal(t, []byte{'U', 'M', 0x01, 0x00, 0x03, 0xAA, 0xBB, 0xCC}, pkt)
}

func TestReadPacket(t *testing.T) {
	pkt, _ := BuildPacket([]byte{1, 2, 3, 4})
	frame, err := ReadPacket(bytes.NewReader(pkt))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, frame)

	_, err = ReadPacket(bytes.NewReader([]byte{'R', 'I', 1, 0, 0}))
	require.Error(t, err)

	_, err = ReadPacket(bytes.NewReader([]byte{'U', 'M', 9, 0, 0}))
	require.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

// pipeLink dials an in-memory pipe served by respond.
func pipeLink(t *testing.T, status byte, got chan<- []byte) *Link {
	t.Helper()
	l, err := New(Config{Endpoint: "pipe", Timeout: time.Second})
	require.NoError(t, err)

	l.dial = func(_, _ string, _ time.Duration) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			defer server.Close()
			frame, err := ReadPacket(server)
			if err != nil {
				return
			}
			got <- frame
			_, _ = server.Write([]byte{status})
		}()
		return client, nil
	}
	return l
}

func TestLink_SendAck(t *testing.T) {
	got := make(chan []byte, 1)
	l := pipeLink(t, respOK, got)

	require.NoError(t, l.Send([]byte{9, 8, 7}))
	require.Equal(t, []byte{9, 8, 7}, <-got)
}

func TestLink_SendRejected(t *testing.T) {
	got := make(chan []byte, 1)
	l := pipeLink(t, respRejected, got)

	require.ErrorIs(t, l.Send([]byte{1}), ErrRejected)
}

func TestLink_SendUnknownStatus(t *testing.T) {
	got := make(chan []byte, 1)
	l := pipeLink(t, 0x7F, got)

	require.Error(t, l.Send([]byte{1}))
}

func TestLink_DialError(t *testing.T) {
	l, err := New(Config{Endpoint: "x"})
	require.NoError(t, err)

	boom := errors.New("refused")
	l.dial = func(_, _ string, _ time.Duration) (net.Conn, error) { return nil, boom }

	require.ErrorIs(t, l.Send([]byte{1}), boom)
}
