// internal/capture/reader.go
package capture

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Reader iterates the frames of a capture stream.
type Reader struct {
	r      *bufio.Reader
	closer io.Closer

	block []byte
	left  int
}

// Open reads the capture file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	rd, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	rd.closer = f
	return rd, nil
}

// NewReader checks the file header.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{r: bufio.NewReader(r)}

	var hdr [fileHeaderSize]byte
	if _, err := io.ReadFull(rd.r, hdr[:]); err != nil {
		return nil, fmt.Errorf("capture: header: %w", err)
	}
	if string(hdr[:4]) != fileMagic {
		return nil, errors.New("capture: not a capture stream")
	}
	if hdr[4] != fileVersion {
		return nil, fmt.Errorf("capture: unsupported version %d", hdr[4])
	}
	return rd, nil
}

// Next returns the next frame, or io.EOF after the last one.
// The returned slice is only valid until the next call.
func (rd *Reader) Next() ([]byte, error) {
	for rd.left == 0 {
		if err := rd.nextBlock(); err != nil {
			return nil, err
		}
	}

	if len(rd.block) < 2 {
		return nil, io.ErrUnexpectedEOF
	}
	n := int(order.Uint16(rd.block))
	if len(rd.block) < 2+n {
		return nil, io.ErrUnexpectedEOF
	}

	frame := rd.block[2 : 2+n]
	rd.block = rd.block[2+n:]
	rd.left--
	return frame, nil
}

func (rd *Reader) nextBlock() error {
	var hdr [blockHeaderSize]byte
	if _, err := io.ReadFull(rd.r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("capture: block header: %w", err)
	}

	codec, err := CreateCodec(CodecType(hdr[0]))
	if err != nil {
		return err
	}
	raw := order.Uint32(hdr[1:5])
	size := order.Uint32(hdr[5:9])
	count := int(order.Uint16(hdr[9:11]))

	if raw > MaxBlockSize || size > raw {
		return fmt.Errorf("capture: corrupt block header (raw %d, comp %d)", raw, size)
	}
	comp := make([]byte, size)

	if _, err := io.ReadFull(rd.r, comp); err != nil {
		return fmt.Errorf("capture: block body: %w", err)
	}

	block, err := codec.Decompress(comp, int(raw))
	if err != nil {
		return err
	}
	if len(block) != int(raw) {
		return fmt.Errorf("capture: block size %d, header says %d", len(block), raw)
	}

	rd.block = block
	rd.left = count
	return nil
}

// All reads every remaining frame, copying each.
func (rd *Reader) All() ([][]byte, error) {
	var out [][]byte
	for {
		f, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, append([]byte(nil), f...))
	}
}

func (rd *Reader) Close() error {
	if rd.closer == nil {
		return nil
	}
	return rd.closer.Close()
}
