// internal/poller/builder.go
package poller

import (
	"time"

	cfg "github.com/CedricK04/UMS/internal/config"
	pmodbus "github.com/CedricK04/UMS/internal/poller/modbus"
)

// Build constructs a Poller and wires Modbus client lifecycle.
// Connection is reused while healthy.
// On transport death, Poller discards the client and uses factory on a future tick.
// No retries, no loops, no semantics.
func Build(src cfg.SourceConfig, bindings []Binding) (*Poller, func() error, error) {
	var current *pmodbus.Client

	// client factory: ONE attempt per call
	factory := func() (Client, error) {
		c, err := pmodbus.New(pmodbus.Config{
			Mode:     src.Mode,
			Endpoint: src.Endpoint,
			UnitID:   src.UnitID,
			Timeout:  time.Duration(src.TimeoutMs) * time.Millisecond,
			BaudRate: src.BaudRate,
			DataBits: src.DataBits,
			StopBits: src.StopBits,
			Parity:   src.Parity,
		})
		if err != nil {
			return nil, err
		}
		current = c
		return c, nil
	}

	// initial client (fail fast at startup)
	client, err := factory()
	if err != nil {
		return nil, nil, err
	}

	reads := make([]ReadBlock, 0, len(src.Reads))
	for _, r := range src.Reads {
		reads = append(reads, ReadBlock{
			FC:       r.FC,
			Address:  r.Address,
			Quantity: r.Quantity,
		})
	}

	p, err := New(
		Config{
			Source:   src.Name,
			Reads:    reads,
			Bindings: bindings,
		},
		client,
		factory,
	)
	if err != nil {
		_ = current.Close()
		return nil, nil, err
	}

	// Closes whichever client is live at shutdown.
	return p, func() error { return current.Close() }, nil
}
