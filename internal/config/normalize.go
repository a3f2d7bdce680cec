// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultIntervalMs = 10
	DefaultTimeoutMs  = 2000
	DeviceNameMax     = 16
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Engine.Mode = strings.ToLower(cfg.Engine.Mode)
	cfg.Engine.Framing = strings.ToLower(cfg.Engine.Framing)
	cfg.Engine.Clock = strings.ToLower(cfg.Engine.Clock)
	if cfg.Engine.Clock == "" {
		cfg.Engine.Clock = "counter"
	}

	if cfg.Sampling.IntervalMs == 0 {
		cfg.Sampling.IntervalMs = DefaultIntervalMs
	}

	if s := cfg.Source; s != nil {
		s.Mode = strings.ToLower(s.Mode)
		if s.Name == "" {
			s.Name = s.Endpoint
		}
		defaultTimeout(&s.TimeoutMs)
	}

	// ------------------------------------------------------------
	// LINK
	// ------------------------------------------------------------

	l := &cfg.Link
	l.Type = strings.ToLower(l.Type)

	switch l.Type {
	case "serial":
		defaultTimeout(&l.Serial.TimeoutMs)
	case "modbus":
		l.Modbus.Mode = strings.ToLower(l.Modbus.Mode)
		defaultTimeout(&l.Modbus.TimeoutMs)
	case "mqtt":
		defaultTimeout(&l.MQTT.TimeoutMs)
		if l.MQTT.ClientID == "" {
			l.MQTT.ClientID = "umstrace-" + uuid.NewString()[:8]
		}
	case "ingest":
		defaultTimeout(&l.Ingest.TimeoutMs)
	case "capture":
		l.Capture.Codec = strings.ToLower(l.Capture.Codec)
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK NORMALIZATION (OPT-IN)
	// ------------------------------------------------------------

	if st := cfg.Status; st != nil {
		defaultTimeout(&st.TimeoutMs)

		// Normalize device_name:
		// - ASCII already validated
		// - Truncate to max 16 characters
		if len(st.DeviceName) > DeviceNameMax {
			st.DeviceName = st.DeviceName[:DeviceNameMax]
		}
	}
}

func defaultTimeout(ms *int) {
	if *ms <= 0 {
		*ms = DefaultTimeoutMs
	}
}
