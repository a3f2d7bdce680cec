// internal/engine/engine.go
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/CedricK04/UMS/internal/datatype"
	"github.com/CedricK04/UMS/internal/exclusion"
	"github.com/CedricK04/UMS/internal/registry"
	"github.com/CedricK04/UMS/internal/rotation"
	"github.com/CedricK04/UMS/internal/sample"
)

// TransmitFunc starts sending frame. It must return promptly and arrange for
// exactly one TransmissionComplete call per accepted frame.
//
// frame aliases an engine slot. It stays valid and unmodified until the
// matching TransmissionComplete, and must not be retained after it.
type TransmitFunc func(frame []byte)

// Config is the setup surface.
type Config struct {
	Transmit  TransmitFunc      // required
	Exclusion exclusion.Section // optional: no protection when nil
	Clock     Clock             // optional: per-update counter when nil
	Mode      rotation.Mode
	Framing   sample.Framing
}

// Engine samples registered channels into rotating slots and hands finished
// frames to an asynchronous transmitter.
//
// Foreground-only: Setup, Register, Update, Destroy.
// Any context: TransmissionComplete, Stats, Initialized.
//
// Setup on a used engine is only allowed after Destroy and once the previous
// transmitter has stopped calling TransmissionComplete.
type Engine struct {
	initialized atomic.Bool

	transmit TransmitFunc
	sec      exclusion.Section
	clock    Clock
	framing  sample.Framing

	reg registry.Registry
	rot rotation.Rotator

	// guarded by sec
	frameSize int
	counter   uint32

	slots [rotation.MaxSlots][sample.MaxFrameSize]byte

	stats counters
}

// New returns an uninitialized engine.
func New() *Engine {
	return &Engine{}
}

// Setup initializes the engine. On failure the engine stays uninitialized.
func (e *Engine) Setup(cfg Config) error {
	if e.initialized.Load() {
		return ErrAlreadyInitialized
	}
	if cfg.Transmit == nil {
		return fmt.Errorf("%w: transmit function", ErrNullArgument)
	}
	if cfg.Framing != sample.FramingCounted && cfg.Framing != sample.FramingCompact {
		return fmt.Errorf("%w: framing %v", ErrInvalidConfig, cfg.Framing)
	}

	rot, err := rotation.New(cfg.Mode)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e.transmit = cfg.Transmit
	e.sec = exclusion.OrNone(cfg.Exclusion)
	e.clock = cfg.Clock
	e.framing = cfg.Framing

	e.reg.Clear()
	e.rot = rot
	e.frameSize = 0
	e.counter = 0
	e.slots = [rotation.MaxSlots][sample.MaxFrameSize]byte{}
	e.stats.reset()

	e.initialized.Store(true)
	return nil
}

// Initialized reports whether Setup succeeded and Destroy has not run since.
func (e *Engine) Initialized() bool {
	return e.initialized.Load()
}

// Register traces the variable at loc. The storage must outlive the engine's
// use of it; see registry.Channel.
func (e *Engine) Register(loc unsafe.Pointer, label string, kind datatype.Kind) (registry.ChannelID, error) {
	if !e.initialized.Load() {
		return 0, ErrNotInitialized
	}

	e.sec.Enter()
	id, err := e.reg.Register(loc, label, kind)
	if err == nil {
		e.frameSize = sample.FrameSize(e.framing, e.reg.PayloadSize())
	}
	e.sec.Exit()

	if err != nil {
		return 0, registrationError(err)
	}
	return id, nil
}

func registrationError(err error) error {
	switch {
	case errors.Is(err, registry.ErrNullLabel):
		return fmt.Errorf("%w: %w", ErrNullArgument, err)
	case errors.Is(err, registry.ErrCapacityExceeded):
		return fmt.Errorf("%w: %w", ErrCapacityExceeded, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidRegistration, err)
	}
}

// Trace registers *p under label with the kind matching T.
func Trace[T datatype.Scalar](e *Engine, p *T, label string) (registry.ChannelID, error) {
	return e.Register(registry.Ref(p), label, datatype.KindOf[T]())
}

// Count returns the number of registered channels.
func (e *Engine) Count() int {
	return e.reg.Count()
}

// Channels returns the registered channels in registration order.
func (e *Engine) Channels() []registry.Channel {
	return e.reg.Channels()
}

// Fingerprint identifies the current channel layout.
func (e *Engine) Fingerprint() uint64 {
	return e.reg.Fingerprint()
}

// Framing returns the configured frame layout.
func (e *Engine) Framing() sample.Framing {
	return e.framing
}

// FrameSize is the exact length handed to the transmit function.
func (e *Engine) FrameSize() int {
	return sample.FrameSize(e.framing, e.reg.PayloadSize())
}

// Update samples every channel and publishes the frame.
//
// Errors leave role state untouched: ErrNotInitialized, ErrRange when no
// channel is registered, ErrTransmitterBusy in reject mode while a frame is
// still in flight.
func (e *Engine) Update() error {
	if !e.initialized.Load() {
		return ErrNotInitialized
	}
	if e.reg.Count() == 0 {
		return ErrRange
	}

	// ---- admit ----

	var ts uint32

	e.sec.Enter()
	err := e.rot.Admit()
	if err == nil && e.clock == nil {
		ts = e.counter
		e.counter++
	}
	w := e.rot.Write()
	e.sec.Exit()

	if err != nil {
		e.stats.rejected.Add(1)
		return fmt.Errorf("%w: %w", ErrTransmitterBusy, err)
	}

	if e.clock != nil {
		ts = e.clock.Now()
	}

	// ---- assemble (producer owns the write slot) ----

	if _, err := sample.Assemble(e.slots[w][:], &e.reg, ts, e.framing); err != nil {
		// Unreachable with a non-empty registry and MaxFrameSize slots.
		return fmt.Errorf("%w: %w", ErrRange, err)
	}

	// ---- rotate ----

	e.sec.Enter()
	tx, start := e.rot.Publish()
	size := e.frameSize
	e.sec.Exit()

	e.stats.updates.Add(1)

	if start {
		e.send(tx, size)
	}
	return nil
}

// TransmissionComplete is called by the transmitter once it has released the
// frame it was given. It may run in interrupt or goroutine context.
// It is a no-op while uninitialized.
func (e *Engine) TransmissionComplete() {
	if !e.initialized.Load() {
		return
	}

	e.sec.Enter()
	tx, start := e.rot.Complete()
	size := e.frameSize
	e.sec.Exit()

	e.stats.completions.Add(1)

	if start {
		e.send(tx, size)
	}
}

// send runs outside the exclusion region.
func (e *Engine) send(slot, size int) {
	e.stats.transmits.Add(1)
	e.transmit(e.slots[slot][:size:size])
}

// Destroy clears all state and marks the engine uninitialized.
// It returns ErrNotInitialized when there is nothing to destroy.
func (e *Engine) Destroy() error {
	if !e.initialized.Load() {
		return ErrNotInitialized
	}

	e.sec.Enter()
	e.reg.Clear()
	e.rot.Reset()
	e.frameSize = 0
	e.counter = 0
	e.slots = [rotation.MaxSlots][sample.MaxFrameSize]byte{}
	e.initialized.Store(false)
	e.sec.Exit()

	return nil
}

// Roles returns the current role bindings.
func (e *Engine) Roles() rotation.Roles {
	if e.rot == nil {
		return rotation.Roles{}
	}
	e.sec.Enter()
	defer e.sec.Exit()
	return e.rot.Roles()
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	s := Stats{
		Updates:     e.stats.updates.Load(),
		Transmits:   e.stats.transmits.Load(),
		Completions: e.stats.completions.Load(),
		Rejected:    e.stats.rejected.Load(),
	}
	if e.rot != nil {
		e.sec.Enter()
		s.Superseded = e.rot.Superseded()
		s.Active = e.rot.Active()
		e.sec.Exit()
	}
	return s
}
