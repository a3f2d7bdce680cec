// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CedricK04/UMS/internal/capture"
	"github.com/CedricK04/UMS/internal/datatype"
	"github.com/CedricK04/UMS/internal/registry"
	"github.com/CedricK04/UMS/internal/rotation"
	"github.com/CedricK04/UMS/internal/sample"
	"github.com/CedricK04/UMS/internal/source"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	// ------------------------------------------------------------
	// ENGINE
	// ------------------------------------------------------------

	if _, err := rotation.ParseMode(cfg.Engine.Mode); err != nil {
		return fmt.Errorf("engine.mode: %w", err)
	}
	if _, err := sample.ParseFraming(cfg.Engine.Framing); err != nil {
		return fmt.Errorf("engine.framing: %w", err)
	}
	switch strings.ToLower(cfg.Engine.Clock) {
	case "", "counter", "micros", "millis":
	default:
		return fmt.Errorf("engine.clock: unknown clock %q", cfg.Engine.Clock)
	}

	if cfg.Sampling.IntervalMs < 0 {
		return fmt.Errorf("sampling.interval_ms must be >= 0, got %d", cfg.Sampling.IntervalMs)
	}

	// ------------------------------------------------------------
	// SOURCE (OPTIONAL)
	// ------------------------------------------------------------

	if s := cfg.Source; s != nil {
		if s.Endpoint == "" {
			return errors.New("source.endpoint required")
		}
		switch strings.ToLower(s.Mode) {
		case "", "tcp", "rtu":
		default:
			return fmt.Errorf("source.mode: unknown mode %q", s.Mode)
		}
		if len(s.Reads) == 0 {
			return errors.New("source.reads: at least one read block required")
		}
		for i, r := range s.Reads {
			if r.FC < 1 || r.FC > 4 {
				return fmt.Errorf("source.reads[%d]: unsupported fc %d", i, r.FC)
			}
			if r.Quantity == 0 {
				return fmt.Errorf("source.reads[%d]: quantity must be > 0", i)
			}
			if uint32(r.Address)+uint32(r.Quantity) > 0x10000 {
				return fmt.Errorf("source.reads[%d]: range exceeds address space", i)
			}
		}
	}

	// ------------------------------------------------------------
	// CHANNELS
	// ------------------------------------------------------------

	if len(cfg.Channels) == 0 {
		return errors.New("channels: at least one channel required")
	}
	if len(cfg.Channels) > registry.MaxChannels {
		return fmt.Errorf("channels: %d declared, capacity is %d", len(cfg.Channels), registry.MaxChannels)
	}

	labels := make(map[string]int)

	for i, ch := range cfg.Channels {
		if ch.Label == "" {
			return fmt.Errorf("channels[%d]: label required", i)
		}
		if prev, dup := labels[ch.Label]; dup {
			return fmt.Errorf("channels[%d]: label %q already used by channels[%d]", i, ch.Label, prev)
		}
		labels[ch.Label] = i

		kind, err := datatype.Parse(ch.Kind)
		if err != nil {
			return fmt.Errorf("channels[%d]: %w", i, err)
		}
		if datatype.Width(kind) == 0 {
			return fmt.Errorf("channels[%d]: kind %s cannot be traced", i, kind)
		}

		if (ch.Signal == nil) == (ch.Register == nil) {
			return fmt.Errorf("channels[%d] %q: exactly one of signal or register required", i, ch.Label)
		}

		if sig := ch.Signal; sig != nil {
			shape, err := source.ParseShape(sig.Shape)
			if err != nil {
				return fmt.Errorf("channels[%d]: %w", i, err)
			}
			if sig.PeriodMs < 0 {
				return fmt.Errorf("channels[%d]: period_ms must be >= 0", i)
			}
			if (shape == source.Ramp || shape == source.Sine || shape == source.Square) && sig.PeriodMs == 0 {
				return fmt.Errorf("channels[%d]: %s signal needs period_ms", i, shape)
			}
		}

		if reg := ch.Register; reg != nil {
			if cfg.Source == nil {
				return fmt.Errorf("channels[%d] %q: register binding without source", i, ch.Label)
			}
			if !covered(cfg.Source.Reads, reg, kind) {
				return fmt.Errorf(
					"channels[%d] %q: fc=%d addr=%d not covered by any source read",
					i, ch.Label, reg.FC, reg.Address,
				)
			}
		}
	}

	// ------------------------------------------------------------
	// LINK
	// ------------------------------------------------------------

	if err := validateLink(cfg.Link); err != nil {
		return err
	}

	// ------------------------------------------------------------
	// STATUS BLOCK (OPT-IN)
	// ------------------------------------------------------------

	if st := cfg.Status; st != nil {
		if st.Endpoint == "" {
			return errors.New("status.endpoint required")
		}
		// device_name sanity (ASCII only)
		for i := 0; i < len(st.DeviceName); i++ {
			if st.DeviceName[i] > 0x7F {
				return errors.New("status.device_name must contain ASCII characters only")
			}
		}
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}

	return nil
}

func validateLink(l LinkConfig) error {
	switch strings.ToLower(l.Type) {
	case "serial":
		if l.Serial == nil || l.Serial.Address == "" {
			return errors.New("link.serial.address required")
		}
	case "modbus":
		if l.Modbus == nil || l.Modbus.Endpoint == "" {
			return errors.New("link.modbus.endpoint required")
		}
		switch strings.ToLower(l.Modbus.Mode) {
		case "", "tcp", "rtu":
		default:
			return fmt.Errorf("link.modbus.mode: unknown mode %q", l.Modbus.Mode)
		}
	case "mqtt":
		if l.MQTT == nil || l.MQTT.Broker == "" || l.MQTT.Topic == "" {
			return errors.New("link.mqtt: broker and topic required")
		}
		if l.MQTT.QoS > 2 {
			return fmt.Errorf("link.mqtt.qos: %d out of range", l.MQTT.QoS)
		}
	case "ingest":
		if l.Ingest == nil || l.Ingest.Endpoint == "" {
			return errors.New("link.ingest.endpoint required")
		}
	case "capture":
		if l.Capture == nil || l.Capture.Path == "" {
			return errors.New("link.capture.path required")
		}
		if _, err := capture.ParseCodec(l.Capture.Codec); err != nil {
			return fmt.Errorf("link.capture.codec: %w", err)
		}
		if l.Capture.BlockFrames < 0 || l.Capture.BlockFrames > 0xFFFF {
			return fmt.Errorf("link.capture.block_frames: %d out of range", l.Capture.BlockFrames)
		}
	case "":
		return errors.New("link.type required")
	default:
		return fmt.Errorf("link.type: unknown link %q", l.Type)
	}
	return nil
}

// covered reports whether a read block holds the whole value.
func covered(reads []ReadConfig, reg *RegisterConfig, kind datatype.Kind) bool {
	n := uint32(1)
	if reg.FC == 3 || reg.FC == 4 {
		n = uint32((datatype.Width(kind) + 1) / 2)
	}
	for _, r := range reads {
		if r.FC != reg.FC {
			continue
		}
		if reg.Address >= r.Address && uint32(reg.Address)+n <= uint32(r.Address)+uint32(r.Quantity) {
			return true
		}
	}
	return false
}
