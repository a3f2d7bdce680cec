// internal/transport/serial/serial.go
package serial

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goburrow/serial"
)

// Config is the UART geometry.
type Config struct {
	Address  string // /dev/ttyUSB0, COM3
	BaudRate int
	DataBits int
	StopBits int
	Parity   string // N, E, O
	Timeout  time.Duration
}

// Link writes raw frames to a serial port, back to back.
type Link struct {
	port io.WriteCloser
}

// Open opens the port described by cfg.
func Open(cfg Config) (*Link, error) {
	if cfg.Address == "" {
		return nil, errors.New("serial link: address required")
	}

	port, err := serial.Open(&serial.Config{
		Address:  cfg.Address,
		BaudRate: orDefault(cfg.BaudRate, 115200),
		DataBits: orDefault(cfg.DataBits, 8),
		StopBits: orDefault(cfg.StopBits, 1),
		Parity:   parity(cfg.Parity),
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serial link: open %s: %w", cfg.Address, err)
	}

	return New(port), nil
}

// New wraps an already open port.
func New(port io.WriteCloser) *Link {
	return &Link{port: port}
}

// Send writes the whole frame.
func (l *Link) Send(frame []byte) error {
	if err := writeAll(l.port, frame); err != nil {
		return fmt.Errorf("serial link: write: %w", err)
	}
	return nil
}

func (l *Link) Close() error {
	return l.port.Close()
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func parity(p string) string {
	switch p {
	case "E", "O", "N":
		return p
	default:
		return "N"
	}
}
