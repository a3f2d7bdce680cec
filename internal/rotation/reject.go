// internal/rotation/reject.go
package rotation

// reject is the two-slot double buffer. A sample arriving while the read
// slot is still being transmitted is refused at Admit.
type reject struct {
	write  uint8
	read   uint8
	active bool
}

func (r *reject) Slots() int { return 2 }

func (r *reject) Write() int { return int(r.write) }

func (r *reject) Admit() error {
	if r.active {
		return ErrBusy
	}
	return nil
}

func (r *reject) Publish() (int, bool) {
	// Only the producer sets active, so an Admit that passed still holds.
	// The read slot stays with the transmitter otherwise.
	if r.active {
		return 0, false
	}
	r.write, r.read = r.read, r.write
	r.active = true
	return int(r.read), true
}

func (r *reject) Complete() (int, bool) {
	r.active = false
	return 0, false
}

func (r *reject) Active() bool { return r.active }

func (r *reject) Superseded() uint64 { return 0 }

func (r *reject) Roles() Roles {
	return Roles{
		Write:    int(r.write),
		Pending:  -1,
		Transmit: int(r.read),
	}
}

func (r *reject) Reset() {
	*r = reject{write: 0, read: 1}
}
