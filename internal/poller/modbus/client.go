// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goburrow/modbus"
)

// Client implements poller.Client on goburrow/modbus.
// This adapter is geometry-only: it issues reads and unpacks raw responses.
type Client struct {
	closer func() error
	mb     modbus.Client
}

// Config is minimal transport config.
type Config struct {
	Mode     string // tcp (default) or rtu
	Endpoint string
	UnitID   uint8
	Timeout  time.Duration

	// RTU only
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

// New creates a connected Modbus client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}

	switch strings.ToLower(cfg.Mode) {
	case "", "tcp":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, err
		}
		return &Client{closer: h.Close, mb: modbus.NewClient(h)}, nil

	case "rtu":
		h := modbus.NewRTUClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if cfg.BaudRate > 0 {
			h.BaudRate = cfg.BaudRate
		}
		if cfg.DataBits > 0 {
			h.DataBits = cfg.DataBits
		}
		if cfg.StopBits > 0 {
			h.StopBits = cfg.StopBits
		}
		if cfg.Parity != "" {
			h.Parity = cfg.Parity
		}
		if err := h.Connect(); err != nil {
			return nil, err
		}
		return &Client{closer: h.Close, mb: modbus.NewClient(h)}, nil

	default:
		return nil, fmt.Errorf("modbus client: unknown mode %q", cfg.Mode)
	}
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer()
}

// ---- poller.Client interface ----

func (c *Client) ReadCoils(addr, qty uint16) ([]bool, error) {
	if qty == 0 {
		return nil, nil
	}
	b, err := c.mb.ReadCoils(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackBits(b, int(qty)), nil
}

func (c *Client) ReadDiscreteInputs(addr, qty uint16) ([]bool, error) {
	if qty == 0 {
		return nil, nil
	}
	b, err := c.mb.ReadDiscreteInputs(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackBits(b, int(qty)), nil
}

func (c *Client) ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) {
	if qty == 0 {
		return nil, nil
	}
	b, err := c.mb.ReadHoldingRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(b, int(qty))
}

func (c *Client) ReadInputRegisters(addr, qty uint16) ([]uint16, error) {
	if qty == 0 {
		return nil, nil
	}
	b, err := c.mb.ReadInputRegisters(addr, qty)
	if err != nil {
		return nil, err
	}
	return unpackRegisters(b, int(qty))
}

// ---- helpers (pure geometry) ----

func unpackBits(data []byte, count int) []bool {
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		byteIdx := i / 8
		bitIdx := i % 8
		if byteIdx >= len(data) {
			out[i] = false
			continue
		}
		out[i] = (data[byteIdx]&(1<<bitIdx) != 0)
	}
	return out
}

func unpackRegisters(data []byte, qty int) ([]uint16, error) {
	if len(data) < 2*qty {
		return nil, fmt.Errorf("modbus: read-registers payload %d bytes, want %d", len(data), 2*qty)
	}
	out := make([]uint16, qty)
	for i := 0; i < qty; i++ {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out, nil
}
