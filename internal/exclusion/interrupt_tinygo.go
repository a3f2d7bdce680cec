//go:build tinygo

// internal/exclusion/interrupt_tinygo.go
package exclusion

import "runtime/interrupt"

// Interrupts masks interrupts on the current core for the length of the
// section. Sections never nest, so one saved state is enough.
type Interrupts struct {
	state interrupt.State
}

func (i *Interrupts) Enter() { i.state = interrupt.Disable() }
func (i *Interrupts) Exit()  { interrupt.Restore(i.state) }
