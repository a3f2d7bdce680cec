// internal/engine/stats.go
package engine

import "sync/atomic"

// Stats is a point-in-time view of the engine counters.
type Stats struct {
	Updates     uint64 // samples assembled and published
	Transmits   uint64 // transmit callback invocations
	Completions uint64 // TransmissionComplete calls while initialized
	Superseded  uint64 // queued samples replaced before being sent
	Rejected    uint64 // Update calls refused with ErrTransmitterBusy
	Active      bool   // a transmission is outstanding
}

type counters struct {
	updates     atomic.Uint64
	transmits   atomic.Uint64
	completions atomic.Uint64
	rejected    atomic.Uint64
}

func (c *counters) reset() {
	c.updates.Store(0)
	c.transmits.Store(0)
	c.completions.Store(0)
	c.rejected.Store(0)
}
