// internal/config/config.go
package config

type Config struct {
	Engine   EngineConfig    `yaml:"engine"`
	Sampling SamplingConfig  `yaml:"sampling"`
	Source   *SourceConfig   `yaml:"source"` // optional live-value device
	Channels []ChannelConfig `yaml:"channels"`
	Link     LinkConfig      `yaml:"link"`
	Status   *StatusConfig   `yaml:"status"` // optional, opt-in
	Log      LogConfig       `yaml:"log"`
}

// ---- ENGINE ----

type EngineConfig struct {
	Mode    string `yaml:"mode"`    // queue | reject
	Framing string `yaml:"framing"` // counted | compact
	Clock   string `yaml:"clock"`   // counter | micros | millis
}

// ---- SAMPLING ----

type SamplingConfig struct {
	IntervalMs int  `yaml:"interval_ms"`
	Handshake  bool `yaml:"handshake"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Name      string `yaml:"name"`
	Mode      string `yaml:"mode"` // tcp | rtu
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`

	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`

	Reads []ReadConfig `yaml:"reads"`
}

// ---- READ GEOMETRY ----

type ReadConfig struct {
	FC       uint8  `yaml:"fc"`
	Address  uint16 `yaml:"address"`
	Quantity uint16 `yaml:"quantity"`
}

// ---- CHANNELS ----

// ChannelConfig declares one traced value. Exactly one of Signal or
// Register drives it.
type ChannelConfig struct {
	Label    string          `yaml:"label"`
	Kind     string          `yaml:"kind"`
	Signal   *SignalConfig   `yaml:"signal"`
	Register *RegisterConfig `yaml:"register"`
}

type SignalConfig struct {
	Shape     string  `yaml:"shape"`
	Amplitude float64 `yaml:"amplitude"`
	Offset    float64 `yaml:"offset"`
	PeriodMs  int     `yaml:"period_ms"`
	Step      float64 `yaml:"step"`
}

type RegisterConfig struct {
	FC      uint8  `yaml:"fc"`
	Address uint16 `yaml:"address"`
}

// ---- LINK ----

type LinkConfig struct {
	Type string `yaml:"type"` // serial | modbus | mqtt | ingest | capture

	Serial  *SerialLinkConfig  `yaml:"serial"`
	Modbus  *ModbusLinkConfig  `yaml:"modbus"`
	MQTT    *MQTTLinkConfig    `yaml:"mqtt"`
	Ingest  *IngestLinkConfig  `yaml:"ingest"`
	Capture *CaptureLinkConfig `yaml:"capture"`
}

type SerialLinkConfig struct {
	Address   string `yaml:"address"`
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	StopBits  int    `yaml:"stop_bits"`
	Parity    string `yaml:"parity"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type ModbusLinkConfig struct {
	Mode      string `yaml:"mode"`
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`

	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
}

type MQTTLinkConfig struct {
	Broker    string `yaml:"broker"`
	ClientID  string `yaml:"client_id"`
	Topic     string `yaml:"topic"`
	QoS       byte   `yaml:"qos"`
	Retained  bool   `yaml:"retained"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type IngestLinkConfig struct {
	Endpoint  string `yaml:"endpoint"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type CaptureLinkConfig struct {
	Path        string `yaml:"path"`
	Codec       string `yaml:"codec"` // none | s2 | zstd | lz4
	BlockFrames int    `yaml:"block_frames"`
}

// ---- STATUS ----

type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}
