// internal/exclusion/exclusion.go
package exclusion

import "sync"

// Section is a short, non-nesting critical section. While entered, no other
// actor that shares the guarded state (an ISR, a completion goroutine) may run
// against it, and everything written inside is visible after Exit.
type Section interface {
	Enter()
	Exit()
}

// None provides no protection. Use it where nothing can preempt the
// foreground path.
type None struct{}

func (None) Enter() {}
func (None) Exit()  {}

// Funcs adapts a pair of enter/exit callbacks. Either may be nil.
type Funcs struct {
	EnterFn func()
	ExitFn  func()
}

func (f Funcs) Enter() {
	if f.EnterFn != nil {
		f.EnterFn()
	}
}

func (f Funcs) Exit() {
	if f.ExitFn != nil {
		f.ExitFn()
	}
}

// Mutex is the hosted equivalent of masking interrupts: completion arrives on
// another goroutine, so the section is a plain lock.
type Mutex struct {
	mu sync.Mutex
}

func (m *Mutex) Enter() { m.mu.Lock() }
func (m *Mutex) Exit()  { m.mu.Unlock() }

// Counting wraps a Section and counts entries. Tests use it to check that
// every role mutation happens inside a section.
type Counting struct {
	Inner   Section
	Entered int
	Depth   int
	MaxSeen int
}

func (c *Counting) Enter() {
	if c.Inner != nil {
		c.Inner.Enter()
	}
	c.Entered++
	c.Depth++
	if c.Depth > c.MaxSeen {
		c.MaxSeen = c.Depth
	}
}

func (c *Counting) Exit() {
	c.Depth--
	if c.Inner != nil {
		c.Inner.Exit()
	}
}

// OrNone returns s, or None when s is nil.
func OrNone(s Section) Section {
	if s == nil {
		return None{}
	}
	return s
}
