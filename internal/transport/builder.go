// internal/transport/builder.go
package transport

import (
	"fmt"
	"time"

	"github.com/CedricK04/UMS/internal/capture"
	cfg "github.com/CedricK04/UMS/internal/config"
	"github.com/CedricK04/UMS/internal/transport/ingest"
	tmodbus "github.com/CedricK04/UMS/internal/transport/modbus"
	"github.com/CedricK04/UMS/internal/transport/mqtt"
	"github.com/CedricK04/UMS/internal/transport/serial"
)

// Build opens the link named by l.
// Assumes config has already passed validation and normalization.
//
// Each branch checks err itself so a failed constructor's typed nil never
// ends up inside the Link interface.
func Build(l cfg.LinkConfig) (Link, error) {
	switch l.Type {
	case "serial":
		s := l.Serial
		ln, err := serial.Open(serial.Config{
			Address:  s.Address,
			BaudRate: s.BaudRate,
			DataBits: s.DataBits,
			StopBits: s.StopBits,
			Parity:   s.Parity,
			Timeout:  ms(s.TimeoutMs),
		})
		if err != nil {
			return nil, err
		}
		return ln, nil

	case "modbus":
		m := l.Modbus
		ln, err := tmodbus.Dial(tmodbus.Config{
			Mode:     m.Mode,
			Endpoint: m.Endpoint,
			Timeout:  ms(m.TimeoutMs),
			BaudRate: m.BaudRate,
			DataBits: m.DataBits,
			StopBits: m.StopBits,
			Parity:   m.Parity,
		}, tmodbus.LinkConfig{
			UnitID:  m.UnitID,
			Address: m.Address,
		})
		if err != nil {
			return nil, err
		}
		return ln, nil

	case "mqtt":
		m := l.MQTT
		ln, err := mqtt.Connect(mqtt.Config{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Topic:    m.Topic,
			QoS:      m.QoS,
			Retained: m.Retained,
			Timeout:  ms(m.TimeoutMs),
		})
		if err != nil {
			return nil, err
		}
		return ln, nil

	case "ingest":
		ln, err := ingest.New(ingest.Config{
			Endpoint: l.Ingest.Endpoint,
			Timeout:  ms(l.Ingest.TimeoutMs),
		})
		if err != nil {
			return nil, err
		}
		return ln, nil

	case "capture":
		c := l.Capture
		codec, err := capture.ParseCodec(c.Codec)
		if err != nil {
			return nil, err
		}
		opts := []capture.Option{capture.WithCodec(codec)}
		if c.BlockFrames > 0 {
			opts = append(opts, capture.WithBlockFrames(c.BlockFrames))
		}
		rec, err := capture.Create(c.Path, opts...)
		if err != nil {
			return nil, err
		}
		return rec, nil

	default:
		return nil, fmt.Errorf("transport: unknown link %q", l.Type)
	}
}

// BuildStatusClient connects the optional status block client.
func BuildStatusClient(st cfg.StatusConfig) (*tmodbus.Client, error) {
	return tmodbus.NewClient(tmodbus.Config{
		Endpoint: st.Endpoint,
		Timeout:  ms(st.TimeoutMs),
	})
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
