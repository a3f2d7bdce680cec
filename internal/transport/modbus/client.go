// internal/transport/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Config selects a Modbus TCP or RTU endpoint.
type Config struct {
	Mode     string // tcp (default) or rtu
	Endpoint string // host:port for tcp, device path for rtu
	Timeout  time.Duration

	// RTU only
	BaudRate int
	DataBits int
	StopBits int
	Parity   string
}

// handler is what both goburrow handlers offer besides packaging.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// Client is a single connection to one Modbus endpoint.
// It serializes requests because it mutates the unit id per write.
type Client struct {
	mu      sync.Mutex
	handler handler
	setUnit func(uint8)
	client  modbus.Client
}

// NewClient connects to cfg.Endpoint.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus link: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	c := &Client{}

	switch strings.ToLower(cfg.Mode) {
	case "", "tcp":
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		c.handler = h
		c.setUnit = func(id uint8) { h.SlaveId = id }

	case "rtu":
		h := modbus.NewRTUClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.BaudRate = orDefault(cfg.BaudRate, 19200)
		h.DataBits = orDefault(cfg.DataBits, 8)
		h.StopBits = orDefault(cfg.StopBits, 1)
		if cfg.Parity != "" {
			h.Parity = cfg.Parity
		}
		c.handler = h
		c.setUnit = func(id uint8) { h.SlaveId = id }

	default:
		return nil, fmt.Errorf("modbus link: unknown mode %q", cfg.Mode)
	}

	if err := c.handler.Connect(); err != nil {
		return nil, fmt.Errorf("modbus link: connect %s: %w", cfg.Endpoint, err)
	}
	c.client = modbus.NewClient(c.handler)

	return c, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// WriteRegisters writes regs as holding registers (FC 16).
func (c *Client) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setUnit(unitID)

	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	return err
}

// WriteCoils writes bits as coils (FC 15).
func (c *Client) WriteCoils(unitID uint8, addr uint16, bits []bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setUnit(unitID)

	_, err := c.client.WriteMultipleCoils(addr, uint16(len(bits)), packBits(bits))
	return err
}

func packBits(bits []bool) []byte {
	n := (len(bits) + 7) / 8
	out := make([]byte, n)
	for i, v := range bits {
		if v {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// Modbus register memory order (BIG-ENDIAN)
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		out[2*i] = byte(r >> 8)
		out[2*i+1] = byte(r)
	}
	return out
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
