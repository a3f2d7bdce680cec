// internal/transport/ingest/client.go
package ingest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	magicHi byte = 0x55 // 'U'
	magicLo byte = 0x4D // 'M'

	versionV1 byte = 0x01

	respOK       byte = 0x00
	respRejected byte = 0x01

	headerSize = 5
)

var ErrRejected = errors.New("ingest link: rejected")

// Link is a raw ingest v1 client (stateless, 1 frame = 1 connection).
type Link struct {
	endpoint string
	timeout  time.Duration
	dial     func(network, addr string, timeout time.Duration) (net.Conn, error)
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func New(cfg Config) (*Link, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("ingest link: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &Link{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		dial:     net.DialTimeout,
	}, nil
}

func (l *Link) Close() error { return nil }

// Send delivers one frame and waits for the one-byte verdict.
func (l *Link) Send(frame []byte) error {
	pkt, err := BuildPacket(frame)
	if err != nil {
		return err
	}

	conn, err := l.dial("tcp", l.endpoint, l.timeout)
	if err != nil {
		return fmt.Errorf("ingest link: dial: %w", err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(l.timeout))
	if err := writeAll(conn, pkt); err != nil {
		return fmt.Errorf("ingest link: write: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(l.timeout))
	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return fmt.Errorf("ingest link: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("ingest link: unknown status 0x%02x", resp[0])
	}
}

//
// ---- Raw ingest v1 packet (LOCKED) ----
//
// Layout (5 bytes header):
// 0–1  Magic "UM"
// 2    Version (0x01)
// 3–4  Frame length, big-endian
// 5+   Frame bytes, verbatim
//

func BuildPacket(frame []byte) ([]byte, error) {
	if len(frame) > 0xFFFF {
		return nil, fmt.Errorf("ingest link: frame of %d bytes too large", len(frame))
	}

	pkt := make([]byte, headerSize, headerSize+len(frame))
	pkt[0] = magicHi
	pkt[1] = magicLo
	pkt[2] = versionV1
	putU16(pkt[3:5], uint16(len(frame)))

	return append(pkt, frame...), nil
}

// ReadPacket parses one packet from r. Receivers use it.
func ReadPacket(r io.Reader) ([]byte, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	if hdr[0] != magicHi || hdr[1] != magicLo {
		return nil, fmt.Errorf("ingest: bad magic 0x%02x%02x", hdr[0], hdr[1])
	}
	if hdr[2] != versionV1 {
		return nil, fmt.Errorf("ingest: unsupported version %d", hdr[2])
	}

	n := int(hdr[3])<<8 | int(hdr[4])
	frame := make([]byte, n)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}

//
// ---- helpers ----
//

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}
