// cmd/umstrace/channels.go
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/CedricK04/UMS/internal/config"
	"github.com/CedricK04/UMS/internal/datatype"
	"github.com/CedricK04/UMS/internal/poller"
	"github.com/CedricK04/UMS/internal/sampler"
	"github.com/CedricK04/UMS/internal/source"
)

type channel struct {
	label string
	cell  *source.Cell
}

// channelSet is the traced state owned by the daemon: one cell per
// configured channel, driven either by a signal or by a poller binding.
type channelSet struct {
	list     []channel
	signals  []*source.Signal
	bindings []poller.Binding
}

func buildChannels(cfgs []config.ChannelConfig, start time.Time) (*channelSet, error) {
	set := &channelSet{}

	for _, cc := range cfgs {
		kind, err := datatype.Parse(cc.Kind)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", cc.Label, err)
		}
		cell, err := source.NewCell(kind)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", cc.Label, err)
		}
		set.list = append(set.list, channel{label: cc.Label, cell: cell})

		switch {
		case cc.Signal != nil:
			shape, err := source.ParseShape(cc.Signal.Shape)
			if err != nil {
				return nil, fmt.Errorf("channel %q: %w", cc.Label, err)
			}
			sig, err := source.NewSignal(source.SignalConfig{
				Shape:     shape,
				Amplitude: cc.Signal.Amplitude,
				Offset:    cc.Signal.Offset,
				Period:    time.Duration(cc.Signal.PeriodMs) * time.Millisecond,
				Step:      cc.Signal.Step,
			}, cell, start)
			if err != nil {
				return nil, fmt.Errorf("channel %q: %w", cc.Label, err)
			}
			set.signals = append(set.signals, sig)

		case cc.Register != nil:
			set.bindings = append(set.bindings, poller.Binding{
				Cell:    cell,
				FC:      cc.Register.FC,
				Address: cc.Register.Address,
			})
		}
	}
	return set, nil
}

func (s *channelSet) refreshers() []sampler.Refresher {
	out := make([]sampler.Refresher, 0, len(s.signals)+1)
	for _, sig := range s.signals {
		out = append(out, sig)
	}
	return out
}

func newLogger(lc config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(lc.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
