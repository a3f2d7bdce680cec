// internal/status/writer.go
package status

import (
	"errors"
	"fmt"
	"strings"
)

// RegisterWriter is the exact contract the status writer uses.
type RegisterWriter interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}

// Plan places the status block.
type Plan struct {
	UnitID     uint8
	Slot       uint16 // block index; base address = Slot * SlotsPerBlock
	DeviceName string
}

// Writer is the delivery-only side of the status block.
// It receives a snapshot and writes it verbatim.
// No logic, no interpretation.
type Writer struct {
	plan Plan
	cli  RegisterWriter

	needFull bool
	last     Snapshot
}

// NewWriter returns a writer that re-asserts the full block first.
func NewWriter(plan Plan, cli RegisterWriter) (*Writer, error) {
	if cli == nil {
		return nil, errors.New("status writer: client required")
	}
	return &Writer{plan: plan, cli: cli, needFull: true}, nil
}

// Write delivers s into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *Writer) Write(s Snapshot) error {
	// ------------------------------------------------------------
	// HARD INVARIANT: seconds_in_error MUST NOT wrap
	// ------------------------------------------------------------
	if s.SecondsInError > MaxSecondsInError {
		s.SecondsInError = MaxSecondsInError
	}

	base := sw.baseAddr()
	unit := sw.plan.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(unit, base, Encode(s, sw.plan.DeviceName)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	write := func(name string, slot uint16, regs ...uint16) bool {
		if err := sw.cli.WriteRegisters(unit, base+slot, regs); err != nil {
			errs = append(errs, fmt.Sprintf("%s write failed: %v", name, err))
			return false
		}
		return true
	}

	if sw.last.Health != s.Health && write("health", SlotHealthCode, s.Health) {
		sw.last.Health = s.Health
	}
	if sw.last.LastErrorCode != s.LastErrorCode && write("last_error", SlotLastErrorCode, s.LastErrorCode) {
		sw.last.LastErrorCode = s.LastErrorCode
	}
	if sw.last.SecondsInError != s.SecondsInError && write("seconds", SlotSecondsInError, s.SecondsInError) {
		sw.last.SecondsInError = s.SecondsInError
	}
	if sw.last.FramesSent != s.FramesSent &&
		write("frames_sent", SlotFramesSent, uint16(s.FramesSent>>16), uint16(s.FramesSent)) {
		sw.last.FramesSent = s.FramesSent
	}
	if sw.last.FramesDropped != s.FramesDropped &&
		write("frames_dropped", SlotFramesDropped, uint16(s.FramesDropped>>16), uint16(s.FramesDropped)) {
		sw.last.FramesDropped = s.FramesDropped
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *Writer) baseAddr() uint16 {
	// Each block owns a fixed SlotsPerBlock window.
	return sw.plan.Slot * SlotsPerBlock
}
