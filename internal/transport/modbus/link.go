// internal/transport/modbus/link.go
package modbus

import (
	"errors"
	"fmt"
	"io"
)

// MaxWriteRegisters is the FC 16 quantity limit.
const MaxWriteRegisters = 123

// MaxFrame is the longest frame one write can carry next to its length word.
const MaxFrame = (MaxWriteRegisters - 1) * 2

var ErrFrameTooLarge = errors.New("modbus link: frame exceeds one register write")

// RegisterWriter is the exact contract the link and the status writer use.
type RegisterWriter interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// LinkConfig places frames in the target memory.
type LinkConfig struct {
	UnitID  uint8
	Address uint16
}

// Link mirrors every frame into a holding-register window:
//
//	reg[addr]     frame length in bytes
//	reg[addr+1..] frame bytes, two per register, big-endian, last one zero padded
type Link struct {
	w      RegisterWriter
	closer io.Closer
	cfg    LinkConfig
}

// NewLink writes through w. closer may be nil.
func NewLink(w RegisterWriter, closer io.Closer, cfg LinkConfig) *Link {
	return &Link{w: w, closer: closer, cfg: cfg}
}

// Dial connects a client and returns a link that owns it.
func Dial(cfg Config, lc LinkConfig) (*Link, error) {
	c, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewLink(c, c, lc), nil
}

func (l *Link) Send(frame []byte) error {
	regs, err := Pack(frame)
	if err != nil {
		return err
	}
	if err := l.w.WriteRegisters(l.cfg.UnitID, l.cfg.Address, regs); err != nil {
		return fmt.Errorf("modbus link: unit=%d addr=%d: %w", l.cfg.UnitID, l.cfg.Address, err)
	}
	return nil
}

func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Pack lays a frame out as registers.
func Pack(frame []byte) ([]uint16, error) {
	if len(frame) > MaxFrame {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(frame))
	}

	regs := make([]uint16, 1+(len(frame)+1)/2)
	regs[0] = uint16(len(frame))
	for i, b := range frame {
		if i%2 == 0 {
			regs[1+i/2] = uint16(b) << 8
		} else {
			regs[1+i/2] |= uint16(b)
		}
	}
	return regs, nil
}

// Unpack is the inverse of Pack.
func Unpack(regs []uint16) ([]byte, error) {
	if len(regs) == 0 {
		return nil, errors.New("modbus link: empty register window")
	}
	n := int(regs[0])
	if (n+1)/2 > len(regs)-1 {
		return nil, fmt.Errorf("modbus link: length %d exceeds window of %d registers", n, len(regs)-1)
	}

	out := make([]byte, n)
	for i := range out {
		r := regs[1+i/2]
		if i%2 == 0 {
			out[i] = byte(r >> 8)
		} else {
			out[i] = byte(r)
		}
	}
	return out, nil
}
