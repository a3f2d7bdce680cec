// internal/transport/transport.go
package transport

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Link is a synchronous frame sink.
// Send must not retain frame after it returns.
type Link interface {
	Send(frame []byte) error
	Close() error
}

// CompleteFunc releases the frame most recently handed to Transmit.
type CompleteFunc func()

// Observer is told the outcome of every frame the driver handled.
// It runs on the driver goroutine.
type Observer func(err error)

var ErrStopped = errors.New("transport: driver not running")

// Stats counts driver outcomes.
type Stats struct {
	Sent    uint64
	Failed  uint64
	Dropped uint64 // handed over while the driver was stopped
	LastErr error
}

// Driver turns a Link into an asynchronous transmitter: Transmit hands the
// frame to a worker goroutine and returns immediately. The worker sends it
// and then calls complete exactly once.
//
// The producer guarantees at most one frame in flight, so the hand-off
// channel never fills.
type Driver struct {
	link     Link
	complete CompleteFunc
	observe  Observer
	log      *slog.Logger

	frames chan []byte

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// Option configures a Driver.
type Option func(*Driver)

// WithObserver registers a per-frame outcome callback.
func WithObserver(fn Observer) Option {
	return func(d *Driver) { d.observe = fn }
}

// WithLogger sets the logger used for send failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// NewDriver returns a stopped driver.
func NewDriver(link Link, complete CompleteFunc, opts ...Option) (*Driver, error) {
	if link == nil {
		return nil, errors.New("transport: link required")
	}
	if complete == nil {
		return nil, errors.New("transport: completion callback required")
	}

	d := &Driver{
		link:     link,
		complete: complete,
		log:      slog.Default(),
		frames:   make(chan []byte, 1),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start launches the worker. It stops when ctx is done or Stop is called.
func (d *Driver) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	d.running = true

	go d.run(ctx, d.done)
}

// Stop halts the worker and waits for it. A frame already handed over is
// sent first. Stop also waits for a worker that exited on its own context.
func (d *Driver) Stop() {
	d.mu.Lock()
	d.running = false
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Transmit is the engine's transmit callback.
//
// While stopped, the frame is dropped and released immediately so the
// producer never stalls on a dead transmitter.
func (d *Driver) Transmit(frame []byte) {
	d.mu.Lock()
	running := d.running
	if running {
		d.frames <- frame
	}
	d.mu.Unlock()

	if !running {
		d.dropped.Add(1)
		d.record(ErrStopped)
		d.complete()
	}
}

func (d *Driver) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		select {
		case frame := <-d.frames:
			d.deliver(frame)
		case <-ctx.Done():
			// From here on Transmit drops and releases on its own.
			d.mu.Lock()
			d.running = false
			d.mu.Unlock()

			// drain the hand-off so its owner is released
			select {
			case frame := <-d.frames:
				d.deliver(frame)
			default:
			}
			return
		}
	}
}

func (d *Driver) deliver(frame []byte) {
	err := d.link.Send(frame)
	if err != nil {
		d.failed.Add(1)
		d.log.Warn("frame send failed", "size", len(frame), "error", err)
	} else {
		d.sent.Add(1)
	}
	d.record(err)

	// Release the slot last: after this the engine may reuse it.
	d.complete()
}

func (d *Driver) record(err error) {
	if err != nil {
		d.mu.Lock()
		d.lastErr = err
		d.mu.Unlock()
	}
	if d.observe != nil {
		d.observe(err)
	}
}

// Stats returns the driver counters.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	last := d.lastErr
	d.mu.Unlock()

	return Stats{
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
		LastErr: last,
	}
}

// Close stops the driver and closes the link.
func (d *Driver) Close() error {
	d.Stop()
	return d.link.Close()
}
