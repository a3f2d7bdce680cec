// internal/rotation/queue.go
package rotation

// queue is the three-slot pipeline.
//
//	write    -> filled by the producer
//	pending  -> newest complete sample, waiting for the transmitter
//	transmit -> owned by the transmitter while active
//
// Slot indices are always pairwise distinct, so whether pending holds an
// unsent sample is tracked by queued, not by comparing indices.
type queue struct {
	write    uint8
	pending  uint8
	transmit uint8

	active     bool
	queued     bool
	superseded uint64
}

func (q *queue) Slots() int { return 3 }

func (q *queue) Write() int { return int(q.write) }

func (q *queue) Admit() error { return nil }

func (q *queue) Publish() (int, bool) {
	// Freshly filled slot becomes pending; the old pending (stale or
	// already sent) becomes the next write target.
	q.write, q.pending = q.pending, q.write

	if q.active {
		if q.queued {
			q.superseded++
		}
		q.queued = true
		return 0, false
	}

	q.active = true
	q.pending, q.transmit = q.transmit, q.pending
	q.queued = false
	return int(q.transmit), true
}

func (q *queue) Complete() (int, bool) {
	if !q.active {
		return 0, false
	}

	if q.queued {
		q.pending, q.transmit = q.transmit, q.pending
		q.queued = false
		return int(q.transmit), true
	}

	q.active = false
	return 0, false
}

func (q *queue) Active() bool { return q.active }

func (q *queue) Superseded() uint64 { return q.superseded }

func (q *queue) Roles() Roles {
	return Roles{
		Write:    int(q.write),
		Pending:  int(q.pending),
		Transmit: int(q.transmit),
	}
}

func (q *queue) Reset() {
	*q = queue{write: 0, pending: 1, transmit: 2}
}
