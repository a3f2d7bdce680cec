// internal/transport/builder_test.go
package transport

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CedricK04/UMS/internal/capture"
	cfg "github.com/CedricK04/UMS/internal/config"
)

func TestBuild_Capture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.umsc")

	l, err := Build(cfg.LinkConfig{
		Type:    "capture",
		Capture: &cfg.CaptureLinkConfig{Path: path, Codec: "lz4", BlockFrames: 2},
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Send([]byte{byte(i), 0, 0, 0, 1, 0xAA}))
	}
	require.NoError(t, l.Close())

	rd, err := capture.Open(path)
	require.NoError(t, err)
	defer rd.Close()

	frames, err := rd.All()
	require.NoError(t, err)
	require.Len(t, frames, 3)
	require.Equal(t, byte(2), frames[2][0])
}

func TestBuild_Ingest(t *testing.T) {
	l, err := Build(cfg.LinkConfig{
		Type:   "ingest",
		Ingest: &cfg.IngestLinkConfig{Endpoint: "127.0.0.1:9", TimeoutMs: 100},
	})
	require.NoError(t, err)
	require.NotNil(t, l)
	require.NoError(t, l.Close())
}

func TestBuild_Failures(t *testing.T) {
	_, err := Build(cfg.LinkConfig{Type: "can"})
	require.Error(t, err)

	l, err := Build(cfg.LinkConfig{
		Type:    "capture",
		Capture: &cfg.CaptureLinkConfig{Path: filepath.Join(t.TempDir(), "missing", "dir", "x")},
	})
	require.Error(t, err)
	require.Nil(t, l)
}
