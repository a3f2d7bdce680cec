// internal/source/signal.go
package source

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Shape is a synthetic waveform.
type Shape uint8

const (
	Constant Shape = iota
	Ramp
	Sine
	Square
	Counter
)

func (s Shape) String() string {
	switch s {
	case Constant:
		return "constant"
	case Ramp:
		return "ramp"
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Counter:
		return "counter"
	default:
		return fmt.Sprintf("shape(%d)", uint8(s))
	}
}

// ParseShape resolves a config name.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constant", "const":
		return Constant, nil
	case "ramp", "sawtooth":
		return Ramp, nil
	case "sine", "sin":
		return Sine, nil
	case "square":
		return Square, nil
	case "counter":
		return Counter, nil
	default:
		return 0, fmt.Errorf("source: unknown signal %q", s)
	}
}

// SignalConfig parameterizes a generator. Value = Offset + Amplitude * f(t).
type SignalConfig struct {
	Shape     Shape
	Amplitude float64
	Offset    float64
	Period    time.Duration // ramp, sine, square
	Step      float64       // counter increment per refresh
}

// Signal drives one Cell from a waveform.
type Signal struct {
	cfg   SignalConfig
	cell  *Cell
	start time.Time
	n     uint64
}

// NewSignal binds cfg to cell. The waveform phase starts at start.
func NewSignal(cfg SignalConfig, cell *Cell, start time.Time) (*Signal, error) {
	if cell == nil {
		return nil, errors.New("source: signal needs a cell")
	}
	switch cfg.Shape {
	case Ramp, Sine, Square:
		if cfg.Period <= 0 {
			return nil, fmt.Errorf("source: %s signal needs a period", cfg.Shape)
		}
	case Constant, Counter:
	default:
		return nil, fmt.Errorf("source: unsupported shape %s", cfg.Shape)
	}
	if cfg.Shape == Counter && cfg.Step == 0 {
		cfg.Step = 1
	}
	return &Signal{cfg: cfg, cell: cell, start: start}, nil
}

func (s *Signal) Cell() *Cell { return s.cell }

// At computes the waveform value at now without touching the cell.
func (s *Signal) At(now time.Time) float64 {
	c := s.cfg
	switch c.Shape {
	case Ramp:
		return c.Offset + c.Amplitude*phase(now.Sub(s.start), c.Period)
	case Sine:
		return c.Offset + c.Amplitude*math.Sin(2*math.Pi*phase(now.Sub(s.start), c.Period))
	case Square:
		if phase(now.Sub(s.start), c.Period) < 0.5 {
			return c.Offset + c.Amplitude
		}
		return c.Offset - c.Amplitude
	case Counter:
		return c.Offset + c.Step*float64(s.n)
	default:
		return c.Offset
	}
}

// Refresh writes the value at now into the cell.
func (s *Signal) Refresh(now time.Time) error {
	s.cell.Set(s.At(now))
	if s.cfg.Shape == Counter {
		s.n++
	}
	return nil
}

// phase is the position of d within its period, in [0, 1).
func phase(d, period time.Duration) float64 {
	if d < 0 {
		d = 0
	}
	return float64(d%period) / float64(period)
}
