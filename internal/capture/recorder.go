// internal/capture/recorder.go
package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/CedricK04/UMS/internal/endian"
	"github.com/CedricK04/UMS/internal/sample"
)

// File layout:
//
//	"UMSC" version(u8)
//	block*:
//	  codec(u8) raw(u32) comp(u32) count(u16)   little-endian
//	  comp bytes -> raw bytes: count x [len u16][frame]
const (
	fileMagic   = "UMSC"
	fileVersion = 1

	fileHeaderSize  = 5
	blockHeaderSize = 11

	DefaultBlockFrames = 256

	// MaxBlockSize bounds a block's raw and compressed size: a full block of
	// the largest engine frames.
	MaxBlockSize = 0xFFFF * (2 + sample.MaxFrameSize)
)

var (
	ErrClosed         = errors.New("capture: recorder closed")
	errIncompressible = errors.New("capture: block incompressible")
)

var order = endian.For(endian.Little)

// Recorder is a Link that appends frames to a compressed capture stream.
type Recorder struct {
	mu sync.Mutex

	w      *bufio.Writer
	closer io.Closer

	codecType CodecType
	codec     Codec
	perBlock  int

	block  []byte
	count  int
	closed bool
	err    error // first write failure; the stream is unusable after it

	blocks int
	frames int
}

// Option configures a Recorder.
type Option func(*Recorder) error

// WithCodec selects the block codec.
func WithCodec(t CodecType) Option {
	return func(r *Recorder) error {
		c, err := CreateCodec(t)
		if err != nil {
			return err
		}
		r.codecType, r.codec = t, c
		return nil
	}
}

// WithBlockFrames sets how many frames go into one block.
func WithBlockFrames(n int) Option {
	return func(r *Recorder) error {
		if n <= 0 || n > 0xFFFF {
			return fmt.Errorf("capture: block frames %d out of range", n)
		}
		r.perBlock = n
		return nil
	}
}

// Create truncates path and records into it.
func Create(path string, opts ...Option) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	r, err := NewRecorder(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewRecorder writes the file header to w.
func NewRecorder(w io.Writer, opts ...Option) (*Recorder, error) {
	r := &Recorder{
		w:         bufio.NewWriter(w),
		codecType: CodecS2,
		codec:     s2Codec{},
		perBlock:  DefaultBlockFrames,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	hdr := append([]byte(fileMagic), fileVersion)
	if _, err := r.w.Write(hdr); err != nil {
		return nil, fmt.Errorf("capture: header: %w", err)
	}
	return r, nil
}

// Send copies frame into the current block.
func (r *Recorder) Send(frame []byte) error {
	if len(frame) > 0xFFFF {
		return fmt.Errorf("capture: frame of %d bytes too large", len(frame))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.err != nil {
		return r.err
	}

	if r.count > 0 && len(r.block)+2+len(frame) > MaxBlockSize {
		if err := r.flushLocked(); err != nil {
			return err
		}
	}

	r.block = order.AppendUint16(r.block, uint16(len(frame)))
	r.block = append(r.block, frame...)
	r.count++
	r.frames++

	if r.count >= r.perBlock {
		return r.flushLocked()
	}
	return nil
}

// Flush writes the partial block and flushes the underlying writer.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.err != nil {
		return r.err
	}
	return r.flushLocked()
}

// flushLocked writes the pending block. On failure the block is discarded
// and the recorder refuses further frames: a half-written block cannot be
// resumed.
func (r *Recorder) flushLocked() error {
	var err error
	if r.count > 0 {
		err = r.writeBlock()
	}
	if err == nil {
		if ferr := r.w.Flush(); ferr != nil {
			err = fmt.Errorf("capture: flush: %w", ferr)
		}
	}
	if err != nil {
		r.err = err
		r.block = r.block[:0]
		r.count = 0
	}
	return err
}

func (r *Recorder) writeBlock() error {
	codec := r.codecType
	comp, err := r.codec.Compress(r.block)
	if errors.Is(err, errIncompressible) || (err == nil && len(comp) >= len(r.block)) {
		codec, comp, err = CodecNone, r.block, nil
	}
	if err != nil {
		return fmt.Errorf("capture: compress: %w", err)
	}

	var hdr [blockHeaderSize]byte
	hdr[0] = byte(codec)
	order.PutUint32(hdr[1:5], uint32(len(r.block)))
	order.PutUint32(hdr[5:9], uint32(len(comp)))
	order.PutUint16(hdr[9:11], uint16(r.count))

	if _, err := r.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("capture: write block: %w", err)
	}
	if _, err := r.w.Write(comp); err != nil {
		return fmt.Errorf("capture: write block: %w", err)
	}

	r.blocks++
	r.block = r.block[:0]
	r.count = 0
	return nil
}

// Close flushes pending frames and closes the file, if the recorder owns one.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	err := r.err
	if err == nil {
		err = r.flushLocked()
	}
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Stats returns the number of frames accepted and blocks written.
func (r *Recorder) Stats() (frames, blocks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames, r.blocks
}
