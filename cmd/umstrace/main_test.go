// cmd/umstrace/main_test.go
package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CedricK04/UMS/internal/config"
	"github.com/CedricK04/UMS/internal/datatype"
	"github.com/CedricK04/UMS/internal/rotation"
	"github.com/CedricK04/UMS/internal/sample"
)

func TestBuildChannels(t *testing.T) {
	set, err := buildChannels([]config.ChannelConfig{
		{Label: "speed", Kind: "float32", Signal: &config.SignalConfig{Shape: "sine", Amplitude: 2, PeriodMs: 100}},
		{Label: "ticks", Kind: "uint16", Signal: &config.SignalConfig{Shape: "counter"}},
		{Label: "temp", Kind: "int16", Register: &config.RegisterConfig{FC: 3, Address: 10}},
	}, time.Now())
	require.NoError(t, err)

	require.Len(t, set.list, 3)
	require.Len(t, set.signals, 2)
	require.Len(t, set.bindings, 1)
	require.Len(t, set.refreshers(), 2)

	require.Equal(t, datatype.Float32, set.list[0].cell.Kind())
	require.Same(t, set.list[2].cell, set.bindings[0].Cell)
	require.Equal(t, uint16(10), set.bindings[0].Address)
}

func TestBuildChannels_Errors(t *testing.T) {
	_, err := buildChannels([]config.ChannelConfig{{Label: "x", Kind: "complex"}}, time.Now())
	require.Error(t, err)

	_, err = buildChannels([]config.ChannelConfig{
		{Label: "x", Kind: "uint8", Signal: &config.SignalConfig{Shape: "sine"}},
	}, time.Now())
	require.Error(t, err)
}

func TestEngineConfig(t *testing.T) {
	ec, err := engineConfig(config.EngineConfig{Mode: "reject", Framing: "compact", Clock: "micros"}, func([]byte) {})
	require.NoError(t, err)
	require.Equal(t, rotation.ModeReject, ec.Mode)
	require.Equal(t, sample.FramingCompact, ec.Framing)
	require.NotNil(t, ec.Clock)
	require.NotNil(t, ec.Exclusion)

	ec, err = engineConfig(config.EngineConfig{Clock: "counter"}, func([]byte) {})
	require.NoError(t, err)
	require.Equal(t, rotation.ModeQueue, ec.Mode)
	require.Equal(t, sample.FramingCounted, ec.Framing)
	require.Nil(t, ec.Clock)

	_, err = engineConfig(config.EngineConfig{Mode: "ring"}, func([]byte) {})
	require.Error(t, err)
}
