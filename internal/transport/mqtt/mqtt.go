// internal/transport/mqtt/mqtt.go
package mqtt

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config is the broker and topic geometry.
type Config struct {
	Broker   string // host:port
	ClientID string
	Topic    string
	QoS      byte
	Retained bool
	Timeout  time.Duration
}

var (
	ErrNotConnected   = errors.New("mqtt link: not connected")
	ErrConnectTimeout = errors.New("mqtt link: connection timeout")
)

var newClient = paho.NewClient

// Link publishes every frame as one message.
type Link struct {
	client    paho.Client
	cfg       Config
	connected atomic.Bool
}

// Connect dials the broker. The client reconnects on its own afterwards;
// frames sent while disconnected fail fast.
func Connect(cfg Config) (*Link, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt link: broker required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("mqtt link: topic required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}

	l := &Link{cfg: cfg}

	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", cfg.Broker))
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(paho.Client) {
		l.connected.Store(true)
		slog.Info("mqtt link connected", "broker", cfg.Broker, "topic", cfg.Topic)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		l.connected.Store(false)
		slog.Warn("mqtt link lost, will auto-reconnect", "broker", cfg.Broker, "error", err)
	}

	client := newClient(opts)

	// With connect retry on, a client that misses the deadline keeps
	// dialing until it is disconnected.
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		client.Disconnect(0)
		return nil, ErrConnectTimeout
	}
	if err := token.Error(); err != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt link: connect: %w", err)
	}

	l.client = client
	l.connected.Store(true)
	return l, nil
}

// New wraps an already connected client.
func New(client paho.Client, cfg Config) *Link {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	l := &Link{client: client, cfg: cfg}
	l.connected.Store(client.IsConnected())
	return l
}

// Send publishes a copy of frame: paho may still hold the payload after
// the token completes.
func (l *Link) Send(frame []byte) error {
	if !l.connected.Load() {
		return ErrNotConnected
	}

	payload := append([]byte(nil), frame...)

	token := l.client.Publish(l.cfg.Topic, l.cfg.QoS, l.cfg.Retained, payload)
	if !token.WaitTimeout(l.cfg.Timeout) {
		return errors.New("mqtt link: publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt link: publish: %w", err)
	}
	return nil
}

// Close disconnects with a 250ms grace period.
func (l *Link) Close() error {
	if l.client != nil && l.client.IsConnected() {
		l.client.Disconnect(250)
	}
	l.connected.Store(false)
	return nil
}
