// internal/capture/codec.go
package capture

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CodecType identifies a block compression algorithm on disk.
type CodecType uint8

const (
	CodecNone CodecType = 0
	CodecS2   CodecType = 1
	CodecZstd CodecType = 2
	CodecLZ4  CodecType = 3
)

func (c CodecType) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecS2:
		return "s2"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec resolves a config name. Empty selects s2.
func ParseCodec(s string) (CodecType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "s2":
		return CodecS2, nil
	case "none":
		return CodecNone, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("capture: unknown codec %q", s)
	}
}

// Codec compresses whole blocks. rawSize is the decompressed length recorded
// in the block header.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, rawSize int) ([]byte, error)
}

// CreateCodec returns the codec for t.
func CreateCodec(t CodecType) (Codec, error) {
	switch t {
	case CodecNone:
		return noopCodec{}, nil
	case CodecS2:
		return s2Codec{}, nil
	case CodecZstd:
		return zstdCodec{}, nil
	case CodecLZ4:
		return lz4Codec{}, nil
	default:
		return nil, fmt.Errorf("capture: unsupported codec %s", t)
	}
}

// ---- none ----

type noopCodec struct{}

func (noopCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (noopCodec) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) != rawSize {
		return nil, fmt.Errorf("capture: raw block size %d, header says %d", len(data), rawSize)
	}
	return data, nil
}

// ---- s2 ----

type s2Codec struct{}

func (s2Codec) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (s2Codec) Decompress(data []byte, rawSize int) ([]byte, error) {
	return s2.Decode(make([]byte, rawSize), data)
}

// ---- zstd ----

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("capture: zstd encoder: %v", err))
		}
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("capture: zstd decoder: %v", err))
		}
		return dec
	},
}

type zstdCodec struct{}

func (zstdCodec) Compress(data []byte) ([]byte, error) {
	enc := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zstdCodec) Decompress(data []byte, rawSize int) ([]byte, error) {
	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	out, err := dec.DecodeAll(data, make([]byte, 0, rawSize))
	if err != nil {
		return nil, fmt.Errorf("capture: zstd: %w", err)
	}
	return out, nil
}

// ---- lz4 ----

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

type lz4Codec struct{}

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// incompressible: lz4 leaves dst empty
		return nil, errIncompressible
	}
	return dst[:n], nil
}

func (lz4Codec) Decompress(data []byte, rawSize int) ([]byte, error) {
	out := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, fmt.Errorf("capture: lz4: %w", err)
	}
	return out[:n], nil
}
