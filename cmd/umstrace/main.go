// cmd/umstrace/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CedricK04/UMS/internal/config"
	"github.com/CedricK04/UMS/internal/engine"
	"github.com/CedricK04/UMS/internal/exclusion"
	"github.com/CedricK04/UMS/internal/handshake"
	"github.com/CedricK04/UMS/internal/poller"
	"github.com/CedricK04/UMS/internal/rotation"
	"github.com/CedricK04/UMS/internal/sample"
	"github.com/CedricK04/UMS/internal/sampler"
	"github.com/CedricK04/UMS/internal/status"
	"github.com/CedricK04/UMS/internal/transport"
)

func main() {
	if len(os.Args) < 2 {
		fatal(slog.Default(), "usage: umstrace <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(slog.Default(), "config load failed", "error", err)
	}

	if err := config.Validate(cfg); err != nil {
		fatal(slog.Default(), "config validation failed", "error", err)
	}
	config.Normalize(cfg)

	log := newLogger(cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Channels + sources
	// --------------------

	chans, err := buildChannels(cfg.Channels, time.Now())
	if err != nil {
		fatal(log, "channel build failed", "error", err)
	}

	sources := chans.refreshers()

	if cfg.Source != nil {
		p, closePoller, err := poller.Build(*cfg.Source, chans.bindings)
		if err != nil {
			fatal(log, "poller build failed", "source", cfg.Source.Name, "error", err)
		}
		defer closePoller()
		sources = append([]sampler.Refresher{p}, sources...)
	}

	// --------------------
	// Link + async driver
	// --------------------

	link, err := transport.Build(cfg.Link)
	if err != nil {
		fatal(log, "link open failed", "link", cfg.Link.Type, "error", err)
	}

	eng := engine.New()

	var opts []transport.Option
	opts = append(opts, transport.WithLogger(log.With("link", cfg.Link.Type)))

	var reporter *status.Reporter
	if cfg.Status != nil {
		var closeStatus func() error
		reporter, closeStatus, err = buildReporter(*cfg.Status, log)
		if err != nil {
			fatal(log, "status setup failed", "error", err)
		}
		defer closeStatus()
		opts = append(opts, transport.WithObserver(reporter.Observe))
	}

	drv, err := transport.NewDriver(link, eng.TransmissionComplete, opts...)
	if err != nil {
		fatal(log, "driver setup failed", "error", err)
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Warn("link close failed", "error", err)
		}
	}()

	// --------------------
	// Engine
	// --------------------

	ecfg, err := engineConfig(cfg.Engine, drv.Transmit)
	if err != nil {
		fatal(log, "engine config failed", "error", err)
	}
	if err := eng.Setup(ecfg); err != nil {
		fatal(log, "engine setup failed", "error", err)
	}

	for _, ch := range chans.list {
		if _, err := eng.Register(ch.cell.Ptr(), ch.label, ch.cell.Kind()); err != nil {
			fatal(log, "channel register failed", "label", ch.label, "error", err)
		}
	}

	log.Info("engine ready",
		"channels", eng.Count(),
		"frame_size", eng.FrameSize(),
		"mode", ecfg.Mode.String(),
		"framing", ecfg.Framing.String(),
	)

	// Handshake goes out on the bare link before the driver owns it.
	if cfg.Sampling.Handshake {
		hs := handshake.Build(eng.Channels(), eng.Framing(), eng.Fingerprint())
		msg, err := handshake.Encode(hs)
		if err != nil {
			fatal(log, "handshake encode failed", "error", err)
		}
		if err := link.Send(msg); err != nil {
			fatal(log, "handshake send failed", "error", err)
		}
		log.Info("handshake sent", "session", hs.Session, "fingerprint", hs.Fingerprint)
	}

	drv.Start(ctx)

	if reporter != nil {
		go reporter.Run(ctx)
	}

	// --------------------
	// Sample until signalled
	// --------------------

	smp, err := sampler.New(time.Duration(cfg.Sampling.IntervalMs)*time.Millisecond, eng, sources, log)
	if err != nil {
		fatal(log, "sampler setup failed", "error", err)
	}

	smp.Run(ctx)

	log.Info("shutting down")

	drv.Stop()

	es, ds, ss := eng.Stats(), drv.Stats(), smp.Stats()
	log.Info("final stats",
		"updates", es.Updates,
		"transmits", es.Transmits,
		"superseded", es.Superseded,
		"rejected", es.Rejected,
		"sent", ds.Sent,
		"failed", ds.Failed,
		"dropped", ds.Dropped,
		"busy", ss.Busy,
		"refresh_errors", ss.RefreshErrors,
	)

	if err := eng.Destroy(); err != nil {
		log.Warn("engine destroy failed", "error", err)
	}
}

func engineConfig(ec config.EngineConfig, tx engine.TransmitFunc) (engine.Config, error) {
	mode, err := rotation.ParseMode(ec.Mode)
	if err != nil {
		return engine.Config{}, err
	}
	framing, err := sample.ParseFraming(ec.Framing)
	if err != nil {
		return engine.Config{}, err
	}

	out := engine.Config{
		Transmit:  tx,
		Exclusion: &exclusion.Mutex{},
		Mode:      mode,
		Framing:   framing,
	}

	switch ec.Clock {
	case "micros":
		out.Clock = engine.Micros(time.Now())
	case "millis":
		out.Clock = engine.Millis(time.Now())
	}
	return out, nil
}

func buildReporter(st config.StatusConfig, log *slog.Logger) (*status.Reporter, func() error, error) {
	cli, err := transport.BuildStatusClient(st)
	if err != nil {
		return nil, nil, err
	}

	w, err := status.NewWriter(status.Plan{
		UnitID:     st.UnitID,
		Slot:       st.Slot,
		DeviceName: st.DeviceName,
	}, cli)
	if err != nil {
		_ = cli.Close()
		return nil, nil, err
	}

	r := status.NewReporter(status.NewTracker(), w, log.With("status", st.Endpoint))
	return r, cli.Close, nil
}

func fatal(log *slog.Logger, msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}
