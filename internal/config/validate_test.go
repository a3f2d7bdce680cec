// internal/config/validate_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// helper to build a valid config quickly
func base() *Config {
	return &Config{
		Channels: []ChannelConfig{
			{Label: "temp", Kind: "float32", Signal: &SignalConfig{Shape: "sine", Amplitude: 1, PeriodMs: 1000}},
		},
		Link: LinkConfig{
			Type:    "capture",
			Capture: &CaptureLinkConfig{Path: "/tmp/trace.umsc"},
		},
	}
}

func withSource(cfg *Config) *Config {
	cfg.Source = &SourceConfig{
		Endpoint: "127.0.0.1:502",
		Reads:    []ReadConfig{{FC: 3, Address: 0, Quantity: 10}},
	}
	return cfg
}

// ---- tests ----

func TestValidate_Minimal(t *testing.T) {
	require.NoError(t, Validate(base()))
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"nil channels", func(c *Config) { c.Channels = nil }},
		{"too many channels", func(c *Config) {
			for i := 0; i < 16; i++ {
				c.Channels = append(c.Channels, ChannelConfig{
					Label: "c" + string(rune('a'+i)), Kind: "u8",
					Signal: &SignalConfig{Shape: "counter"},
				})
			}
		}},
		{"empty label", func(c *Config) { c.Channels[0].Label = "" }},
		{"duplicate label", func(c *Config) { c.Channels = append(c.Channels, c.Channels[0]) }},
		{"unknown kind", func(c *Config) { c.Channels[0].Kind = "complex128" }},
		{"string kind", func(c *Config) { c.Channels[0].Kind = "string" }},
		{"no driver", func(c *Config) { c.Channels[0].Signal = nil }},
		{"two drivers", func(c *Config) { c.Channels[0].Register = &RegisterConfig{FC: 3} }},
		{"sine without period", func(c *Config) { c.Channels[0].Signal.PeriodMs = 0 }},
		{"bad shape", func(c *Config) { c.Channels[0].Signal.Shape = "noise" }},
		{"bad mode", func(c *Config) { c.Engine.Mode = "quad" }},
		{"bad framing", func(c *Config) { c.Engine.Framing = "json" }},
		{"bad clock", func(c *Config) { c.Engine.Clock = "ntp" }},
		{"negative interval", func(c *Config) { c.Sampling.IntervalMs = -1 }},
		{"no link", func(c *Config) { c.Link = LinkConfig{} }},
		{"unknown link", func(c *Config) { c.Link.Type = "can" }},
		{"capture without path", func(c *Config) { c.Link.Capture.Path = "" }},
		{"bad codec", func(c *Config) { c.Link.Capture.Codec = "gzip" }},
		{"mqtt without topic", func(c *Config) {
			c.Link = LinkConfig{Type: "mqtt", MQTT: &MQTTLinkConfig{Broker: "b:1883"}}
		}},
		{"mqtt qos", func(c *Config) {
			c.Link = LinkConfig{Type: "mqtt", MQTT: &MQTTLinkConfig{Broker: "b", Topic: "t", QoS: 3}}
		}},
		{"modbus mode", func(c *Config) {
			c.Link = LinkConfig{Type: "modbus", Modbus: &ModbusLinkConfig{Endpoint: "e", Mode: "ascii"}}
		}},
		{"serial without address", func(c *Config) { c.Link = LinkConfig{Type: "serial", Serial: &SerialLinkConfig{}} }},
		{"status without endpoint", func(c *Config) { c.Status = &StatusConfig{} }},
		{"status non-ascii name", func(c *Config) { c.Status = &StatusConfig{Endpoint: "e", DeviceName: "pümp"} }},
		{"log level", func(c *Config) { c.Log.Level = "trace" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			require.Error(t, Validate(cfg))
		})
	}
}

func TestValidate_RegisterBinding(t *testing.T) {
	cfg := withSource(base())
	cfg.Channels = append(cfg.Channels, ChannelConfig{
		Label: "rpm", Kind: "uint32", Register: &RegisterConfig{FC: 3, Address: 8},
	})
	require.NoError(t, Validate(cfg))

	// uint32 at 9 needs registers 9-10; the read ends at 9
	cfg.Channels[1].Register.Address = 9
	require.Error(t, Validate(cfg))

	// wrong area
	cfg.Channels[1].Register = &RegisterConfig{FC: 4, Address: 0}
	require.Error(t, Validate(cfg))
}

func TestValidate_RegisterWithoutSource(t *testing.T) {
	cfg := base()
	cfg.Channels[0].Signal = nil
	cfg.Channels[0].Register = &RegisterConfig{FC: 3}
	require.Error(t, Validate(cfg))
}

func TestValidate_SourceGeometry(t *testing.T) {
	cfg := withSource(base())
	cfg.Source.Reads[0].FC = 5
	require.Error(t, Validate(cfg))

	cfg = withSource(base())
	cfg.Source.Reads[0].Quantity = 0
	require.Error(t, Validate(cfg))

	cfg = withSource(base())
	cfg.Source.Reads[0].Address = 0xFFFF
	cfg.Source.Reads[0].Quantity = 2
	require.Error(t, Validate(cfg))
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := base()
	cfg.Engine.Mode = "REJECT"
	cfg.Status = &StatusConfig{Endpoint: "e", DeviceName: strings.Repeat("x", 40)}

	require.NoError(t, Validate(cfg))
	require.Equal(t, "REJECT", cfg.Engine.Mode)
	require.Len(t, cfg.Status.DeviceName, 40)
	require.Equal(t, 0, cfg.Sampling.IntervalMs)
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := base()
	cfg.Engine.Mode = "REJECT"
	cfg.Link = LinkConfig{Type: "MQTT", MQTT: &MQTTLinkConfig{Broker: "b:1883", Topic: "t"}}
	cfg.Status = &StatusConfig{Endpoint: "e", DeviceName: strings.Repeat("x", 40)}
	require.NoError(t, Validate(cfg))

	Normalize(cfg)

	require.Equal(t, "reject", cfg.Engine.Mode)
	require.Equal(t, "counter", cfg.Engine.Clock)
	require.Equal(t, DefaultIntervalMs, cfg.Sampling.IntervalMs)
	require.Equal(t, "mqtt", cfg.Link.Type)
	require.Equal(t, DefaultTimeoutMs, cfg.Link.MQTT.TimeoutMs)
	require.True(t, strings.HasPrefix(cfg.Link.MQTT.ClientID, "umstrace-"))
	require.Len(t, cfg.Status.DeviceName, DeviceNameMax)
	require.Equal(t, DefaultTimeoutMs, cfg.Status.TimeoutMs)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ums.yaml")
	doc := `
engine:
  mode: queue
  framing: counted
sampling:
  interval_ms: 5
  handshake: true
source:
  endpoint: 10.0.0.5:502
  unit_id: 3
  reads:
    - { fc: 3, address: 100, quantity: 4 }
channels:
  - label: temp
    kind: float32
    register: { fc: 3, address: 100 }
  - label: wave
    kind: double
    signal: { shape: sine, amplitude: 2, period_ms: 500 }
link:
  type: ingest
  ingest:
    endpoint: 127.0.0.1:9000
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	require.Equal(t, 5, cfg.Sampling.IntervalMs)
	require.True(t, cfg.Sampling.Handshake)
	require.Equal(t, uint8(3), cfg.Source.UnitID)
	require.Len(t, cfg.Channels, 2)
	require.Equal(t, uint16(100), cfg.Channels[0].Register.Address)
	require.Equal(t, 500, cfg.Channels[1].Signal.PeriodMs)
	require.Equal(t, "127.0.0.1:9000", cfg.Link.Ingest.Endpoint)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Parse([]byte("engine:\n  turbo: true\n"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
