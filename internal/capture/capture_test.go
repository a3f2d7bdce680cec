// internal/capture/capture_test.go
package capture

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func frames(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		f := make([]byte, 9)
		f[0] = byte(i)
		f[1] = byte(i >> 8)
		f[4] = 1
		f[5] = 0x80
		f[8] = 0x3F
		out[i] = f
	}
	return out
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("")
	require.NoError(t, err)
	require.Equal(t, CodecS2, c)

	c, err = ParseCodec("LZ4")
	require.NoError(t, err)
	require.Equal(t, CodecLZ4, c)

	_, err = ParseCodec("gzip")
	require.Error(t, err)
}

func TestCodecs_RoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("ums frame payload "), 64)

	for _, ct := range []CodecType{CodecNone, CodecS2, CodecZstd, CodecLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			c, err := CreateCodec(ct)
			require.NoError(t, err)

			comp, err := c.Compress(data)
			require.NoError(t, err)

			raw, err := c.Decompress(comp, len(data))
			require.NoError(t, err)
			require.Equal(t, data, raw)
		})
	}
}

func TestCreateCodec_Unknown(t *testing.T) {
	_, err := CreateCodec(CodecType(42))
	require.Error(t, err)
}

func TestRecorder_RoundTrip(t *testing.T) {
	for _, ct := range []CodecType{CodecNone, CodecS2, CodecZstd, CodecLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			var buf bytes.Buffer
			rec, err := NewRecorder(&buf, WithCodec(ct), WithBlockFrames(16))
			require.NoError(t, err)

			in := frames(100)
			for _, f := range in {
				require.NoError(t, rec.Send(f))
			}
			require.NoError(t, rec.Close())

			n, blocks := rec.Stats()
			require.Equal(t, 100, n)
			require.Equal(t, 7, blocks)

			rd, err := NewReader(&buf)
			require.NoError(t, err)
			out, err := rd.All()
			require.NoError(t, err)
			require.Equal(t, in, out)
		})
	}
}

func TestRecorder_CopiesFrame(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, WithCodec(CodecNone))
	require.NoError(t, err)

	f := []byte{1, 2, 3}
	require.NoError(t, rec.Send(f))
	f[0] = 9
	require.NoError(t, rec.Close())

	rd, err := NewReader(&buf)
	require.NoError(t, err)
	out, err := rd.All()
	require.NoError(t, err)
	require.Equal(t, [][]byte{{1, 2, 3}}, out)
}

func TestRecorder_Closed(t *testing.T) {
	rec, err := NewRecorder(&bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	require.ErrorIs(t, rec.Send([]byte{1}), ErrClosed)
	require.ErrorIs(t, rec.Flush(), ErrClosed)
}

func TestRecorder_Options(t *testing.T) {
	_, err := NewRecorder(&bytes.Buffer{}, WithBlockFrames(0))
	require.Error(t, err)

	_, err = NewRecorder(&bytes.Buffer{}, WithCodec(CodecType(9)))
	require.Error(t, err)
}

func TestReader_BadHeader(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("NOPE!")))
	require.Error(t, err)

	_, err = NewReader(bytes.NewReader([]byte("UMSC\x07")))
	require.Error(t, err)
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.umsc")

	rec, err := Create(path, WithCodec(CodecZstd))
	require.NoError(t, err)
	in := frames(10)
	for _, f := range in {
		require.NoError(t, rec.Send(f))
	}
	require.NoError(t, rec.Close())

	rd, err := Open(path)
	require.NoError(t, err)
	defer rd.Close()

	out, err := rd.All()
	require.NoError(t, err)
	require.Equal(t, in, out)
}

type failWriter struct{ err error }

func (w failWriter) Write([]byte) (int, error) { return 0, w.err }

func TestRecorder_WriteFailureIsSticky(t *testing.T) {
	boom := errors.New("disk full")
	rec, err := NewRecorder(failWriter{boom}, WithCodec(CodecNone), WithBlockFrames(2))
	require.NoError(t, err)

	require.NoError(t, rec.Send([]byte{1}))
	require.ErrorIs(t, rec.Send([]byte{2}), boom)

	// the failed block is discarded, later frames are refused
	require.Zero(t, rec.count)
	require.Empty(t, rec.block)
	for i := 0; i < 10; i++ {
		require.ErrorIs(t, rec.Send([]byte{3}), boom)
	}
	require.Zero(t, rec.count)
	require.ErrorIs(t, rec.Flush(), boom)
	require.ErrorIs(t, rec.Close(), boom)
}

func TestRecorder_SplitsOversizedBlock(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, WithCodec(CodecNone), WithBlockFrames(0xFFFF))
	require.NoError(t, err)

	big := make([]byte, 0xFFFF)
	n := MaxBlockSize/(2+len(big)) + 1
	for i := 0; i < n; i++ {
		big[0] = byte(i)
		require.NoError(t, rec.Send(big))
	}
	require.NoError(t, rec.Close())

	_, blocks := rec.Stats()
	require.Equal(t, 2, blocks)

	rd, err := NewReader(&buf)
	require.NoError(t, err)
	out, err := rd.All()
	require.NoError(t, err)
	require.Len(t, out, n)
	require.Equal(t, byte(n-1), out[n-1][0])
}

func TestReader_RejectsOversizedBlock(t *testing.T) {
	hdr := []byte(fileMagic)
	hdr = append(hdr, fileVersion)

	huge := append([]byte{}, hdr...)
	huge = append(huge, byte(CodecS2))
	huge = order.AppendUint32(huge, 0xFFFFFFFF)
	huge = order.AppendUint32(huge, 16)
	huge = order.AppendUint16(huge, 1)

	rd, err := NewReader(bytes.NewReader(huge))
	require.NoError(t, err)
	_, err = rd.Next()
	require.ErrorContains(t, err, "corrupt block header")

	// compressed larger than raw
	bad := append([]byte{}, hdr...)
	bad = append(bad, byte(CodecNone))
	bad = order.AppendUint32(bad, 8)
	bad = order.AppendUint32(bad, 0xFFFFFF)
	bad = order.AppendUint16(bad, 1)

	rd, err = NewReader(bytes.NewReader(bad))
	require.NoError(t, err)
	_, err = rd.Next()
	require.ErrorContains(t, err, "corrupt block header")
}
