// internal/status/reporter.go
package status

import (
	"context"
	"log/slog"
	"time"
)

// Reporter drives a Tracker and pushes its snapshots through a Writer:
// immediately on a health transition, and once per second otherwise.
type Reporter struct {
	tracker *Tracker
	writer  *Writer
	log     *slog.Logger
	kick    chan struct{}
	period  time.Duration
}

// NewReporter wires tracker to writer. writer may be nil, in which case
// the reporter only keeps the tracker ticking.
func NewReporter(tracker *Tracker, writer *Writer, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{
		tracker: tracker,
		writer:  writer,
		log:     log,
		kick:    make(chan struct{}, 1),
		period:  time.Second,
	}
}

// Observe is a transport.Observer. It never blocks.
func (r *Reporter) Observe(err error) {
	if _, changed := r.tracker.Observe(err); changed {
		select {
		case r.kick <- struct{}{}:
		default:
		}
	}
}

// Run owns the writer until ctx is done.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	// Full block write on start (identity re-assert).
	r.push(r.tracker.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.kick:
			r.push(r.tracker.Snapshot())
		case <-ticker.C:
			if s, changed := r.tracker.Tick(); changed {
				r.push(s)
			}
		}
	}
}

func (r *Reporter) push(s Snapshot) {
	if r.writer == nil {
		r.tracker.MarkReported(s)
		return
	}
	if err := r.writer.Write(s); err != nil {
		r.log.Warn("status write failed", "health", s.Health, "error", err)
		return
	}
	r.tracker.MarkReported(s)
}
