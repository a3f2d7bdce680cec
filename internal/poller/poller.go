// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"
)

// Client abstracts Modbus operations needed by the poller.
// The poller depends on geometry only.
type Client interface {
	ReadCoils(addr, qty uint16) ([]bool, error)              // FC 1
	ReadDiscreteInputs(addr, qty uint16) ([]bool, error)     // FC 2
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
	ReadInputRegisters(addr, qty uint16) ([]uint16, error)   // FC 4
}

// ClientFactory makes ONE connection attempt per call.
type ClientFactory func() (Client, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Source   string
	Reads    []ReadBlock
	Bindings []Binding
}

// Poller is a dumb reader that copies device values into traced cells.
// It runs on the sampling goroutine; it has no clock of its own.
type Poller struct {
	cfg     Config
	client  Client
	factory ClientFactory
}

var ErrNoClient = errors.New("poller: no client")

// New creates a poller with immutable config.
// factory may be nil, in which case a dead client is never replaced.
func New(cfg Config, client Client, factory ClientFactory) (*Poller, error) {
	if cfg.Source == "" {
		return nil, errors.New("poller: source name required")
	}
	if len(cfg.Reads) == 0 {
		return nil, errors.New("poller: at least one read block required")
	}
	for _, b := range cfg.Bindings {
		if b.Cell == nil {
			return nil, errors.New("poller: binding without cell")
		}
		if _, ok := cover(cfg.Reads, b); !ok {
			return nil, fmt.Errorf("poller: fc=%d addr=%d not covered by any read block", b.FC, b.Address)
		}
	}
	return &Poller{cfg: cfg, client: client, factory: factory}, nil
}

// PollOnce performs exactly one poll cycle.
// All-or-nothing: any failure aborts the cycle.
// On failure the client is discarded and the factory is tried on the next cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		Source: p.cfg.Source,
		At:     time.Now(),
	}

	if p.client == nil {
		if p.factory == nil {
			res.Err = ErrNoClient
			return res
		}
		c, err := p.factory()
		if err != nil {
			res.Err = fmt.Errorf("poller: reconnect: %w", err)
			return res
		}
		p.client = c
	}

	var blocks []BlockResult

	for _, rb := range p.cfg.Reads {
		br := BlockResult{FC: rb.FC, Address: rb.Address, Quantity: rb.Quantity}
		var err error

		switch rb.FC {
		case 1:
			br.Bits, err = p.client.ReadCoils(rb.Address, rb.Quantity)
		case 2:
			br.Bits, err = p.client.ReadDiscreteInputs(rb.Address, rb.Quantity)
		case 3:
			br.Registers, err = p.client.ReadHoldingRegisters(rb.Address, rb.Quantity)
		case 4:
			br.Registers, err = p.client.ReadInputRegisters(rb.Address, rb.Quantity)
		default:
			res.Err = errors.New("poller: unsupported function code")
			return res
		}

		if err != nil {
			res.Err = err
			p.drop()
			return res
		}
		blocks = append(blocks, br)
	}

	// Commit only if all reads succeeded
	res.Blocks = blocks
	return res
}

// drop forgets the client after a transport failure.
func (p *Poller) drop() {
	if p.factory == nil {
		return
	}
	if c, ok := p.client.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	p.client = nil
}

// Apply copies a successful poll into the bound cells.
func Apply(res PollResult, bindings []Binding) error {
	if res.Err != nil {
		return res.Err
	}

	for _, b := range bindings {
		blk, ok := findBlock(res.Blocks, b)
		if !ok {
			return fmt.Errorf("poller: fc=%d addr=%d missing from poll", b.FC, b.Address)
		}
		off := int(b.Address - blk.Address)

		switch b.FC {
		case 1, 2:
			b.Cell.SetBool(blk.Bits[off])
		case 3, 4:
			if err := b.Cell.SetRaw(blk.Registers[off:]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Refresh polls once and updates every bound cell. The sampler calls it
// before each engine update; on failure the cells keep their last values.
func (p *Poller) Refresh(time.Time) error {
	return Apply(p.PollOnce(), p.cfg.Bindings)
}

func span(b Binding) uint16 {
	if b.FC == 1 || b.FC == 2 {
		return 1
	}
	return uint16(b.Cell.Registers())
}

func cover(reads []ReadBlock, b Binding) (ReadBlock, bool) {
	for _, r := range reads {
		if r.FC != b.FC {
			continue
		}
		end := uint32(r.Address) + uint32(r.Quantity)
		if b.Address >= r.Address && uint32(b.Address)+uint32(span(b)) <= end {
			return r, true
		}
	}
	return ReadBlock{}, false
}

func findBlock(blocks []BlockResult, b Binding) (BlockResult, bool) {
	for _, blk := range blocks {
		if blk.FC != b.FC {
			continue
		}
		end := uint32(blk.Address) + uint32(blk.Quantity)
		if b.Address >= blk.Address && uint32(b.Address)+uint32(span(b)) <= end {
			return blk, true
		}
	}
	return BlockResult{}, false
}
