// internal/sampler/sampler.go
package sampler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/CedricK04/UMS/internal/engine"
)

// Refresher updates traced values before a sample is taken.
type Refresher interface {
	Refresh(now time.Time) error
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(now time.Time) error

func (f RefreshFunc) Refresh(now time.Time) error { return f(now) }

// Updater is the engine's foreground entry point.
type Updater interface {
	Update() error
}

// Stats counts sampling outcomes.
type Stats struct {
	Ticks         uint64
	Updates       uint64
	Busy          uint64 // Update refused while the link was busy
	UpdateErrors  uint64
	RefreshErrors uint64
}

// Sampler is the foreground loop: refresh every source, then Update.
// One goroutine. No overlap. No retries.
type Sampler struct {
	interval time.Duration
	sources  []Refresher
	eng      Updater
	log      *slog.Logger

	ticks         atomic.Uint64
	updates       atomic.Uint64
	busy          atomic.Uint64
	updateErrors  atomic.Uint64
	refreshErrors atomic.Uint64
}

// New creates a sampler with immutable config.
func New(interval time.Duration, eng Updater, sources []Refresher, log *slog.Logger) (*Sampler, error) {
	if interval <= 0 {
		return nil, errors.New("sampler: interval must be > 0")
	}
	if eng == nil {
		return nil, errors.New("sampler: engine required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sampler{interval: interval, sources: sources, eng: eng, log: log}, nil
}

// Step performs exactly one sampling cycle.
//
// A failed refresh is logged and the sample is still taken: the cell keeps
// its previous value. Busy is not an error in reject mode; it is counted.
func (s *Sampler) Step(now time.Time) error {
	s.ticks.Add(1)

	for _, src := range s.sources {
		if err := src.Refresh(now); err != nil {
			s.refreshErrors.Add(1)
			s.log.Debug("source refresh failed", "error", err)
		}
	}

	err := s.eng.Update()
	switch {
	case err == nil:
		s.updates.Add(1)
	case errors.Is(err, engine.ErrTransmitterBusy):
		s.busy.Add(1)
		err = nil
	default:
		s.updateErrors.Add(1)
	}
	return err
}

// Run starts the ticker loop until ctx is done.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := s.Step(now); err != nil {
				s.log.Warn("engine update failed", "error", err)
			}
		}
	}
}

// Stats returns the sampler counters.
func (s *Sampler) Stats() Stats {
	return Stats{
		Ticks:         s.ticks.Load(),
		Updates:       s.updates.Load(),
		Busy:          s.busy.Load(),
		UpdateErrors:  s.updateErrors.Load(),
		RefreshErrors: s.refreshErrors.Load(),
	}
}
