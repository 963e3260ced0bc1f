package wavmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/riff"
)

const (
	chunkHeaderLen = 8
	riffHeaderLen  = 12
)

// Container walks the sibling chunks of a RIFF/WAVE stream.
// A Container is single-use and not safe for concurrent use.
type Container struct {
	r      io.Reader
	parser *riff.Parser

	// remaining is what is left of the scan window once the current chunk
	// (with its pad byte) is accounted for.
	remaining int64

	current *riff.Chunk
	body    *io.LimitedReader
	avail   int64
	pad     int64
	order   int

	// sized is set when the stream length was known at open time.
	sized bool
}

// OpenContainer reads the RIFF header from r and checks the WAVE form type.
// size is the length of the whole stream, or -1 if unknown. The scan window
// is the smaller of the RIFF size field and what the stream actually holds.
func OpenContainer(r io.Reader, size int64) (*Container, error) {
	parser := riff.New(r)

	id, riffSize, err := parser.IDnSize()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read chunk ID and size: %w", ErrNotRiff, err)
	}

	if id != riff.RiffID {
		return nil, fmt.Errorf("%w: %q - %w", ErrNotRiff, id[:], riff.ErrFmtNotSupported)
	}

	parser.ID = id
	parser.Size = riffSize

	err = binary.Read(r, binary.BigEndian, &parser.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read format: %w", ErrNotRiff, err)
	}

	if parser.Format != riff.WavFormatID {
		return nil, fmt.Errorf("%w: form type %q - %w", ErrNotRiff, parser.Format[:], riff.ErrFmtNotSupported)
	}

	window := int64(riffSize) - 4
	if size >= 0 && size-riffHeaderLen < window {
		window = size - riffHeaderLen
	}

	return &Container{
		r:         r,
		parser:    parser,
		remaining: max(window, 0),
		sized:     size >= 0,
	}, nil
}

// Size returns the size declared in the RIFF header.
func (c *Container) Size() uint32 {
	if c == nil || c.parser == nil {
		return 0
	}

	return c.parser.Size
}

// Next skips whatever is left of the previous chunk, including its pad byte,
// and returns the next sibling. The returned chunk's Size is the declared
// body length. io.EOF means the container is exhausted.
func (c *Container) Next() (*riff.Chunk, error) {
	if c == nil || c.parser == nil {
		return nil, errNilContainer
	}

	err := c.skipCurrent()
	if err != nil {
		return nil, err
	}

	if c.remaining < chunkHeaderLen {
		return nil, io.EOF
	}

	id, size, err := c.parser.IDnSize()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("error reading chunk header - %w", err)
	}

	c.remaining -= chunkHeaderLen

	if uint64(size) > math.MaxInt {
		return nil, fmt.Errorf("%w: %q declares %d bytes", ErrTruncatedChunk, id[:], size)
	}

	// all RIFF chunks must be word aligned. The pad byte following an odd
	// sized chunk isn't included in the declared size.
	c.pad = int64(size % 2)
	c.avail = min(int64(size), c.remaining)
	c.remaining -= min(int64(size)+c.pad, c.remaining)

	c.body = &io.LimitedReader{R: c.r, N: int64(size)}
	c.current = &riff.Chunk{
		ID:   id,
		Size: int(size),
		R:    c.body,
	}
	c.order++

	return c.current, nil
}

// Find scans forward from the current position and returns the first chunk
// with the given ID. Running out of chunks is reported as ErrChunkNotFound.
func (c *Container) Find(id [4]byte) (*riff.Chunk, error) {
	for {
		chunk, err := c.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %q", ErrChunkNotFound, id[:])
			}

			return nil, err
		}

		if chunk.ID == id {
			return chunk, nil
		}
	}
}

// ReadBody reads the full declared body of the chunk last returned by Next
// or Find. A body that doesn't fit the scan window is rejected before any
// allocation. When the stream length is unknown the buffer only grows with
// the bytes actually read.
func (c *Container) ReadBody(chunk *riff.Chunk) ([]byte, error) {
	if chunk == nil {
		return nil, errNilChunk
	}

	if c == nil || chunk != c.current {
		return nil, fmt.Errorf("chunk %q is not the current chunk", chunk.ID[:])
	}

	if chunk.Size < 0 || int64(chunk.Size) > c.avail {
		return nil, fmt.Errorf("%w: %q declares %d bytes, %d available",
			ErrTruncatedChunk, chunk.ID[:], chunk.Size, c.avail)
	}

	if !c.sized {
		var buf bytes.Buffer

		n, err := io.Copy(&buf, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to read the %q chunk - %w", chunk.ID[:], err)
		}

		if n < int64(chunk.Size) {
			return nil, fmt.Errorf("%w: %q declares %d bytes, %d read",
				ErrTruncatedChunk, chunk.ID[:], chunk.Size, n)
		}

		return buf.Bytes(), nil
	}

	buf := make([]byte, chunk.Size)

	_, err := io.ReadFull(chunk, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %q - %w", ErrTruncatedChunk, chunk.ID[:], err)
		}

		return nil, fmt.Errorf("failed to read the %q chunk - %w", chunk.ID[:], err)
	}

	return buf, nil
}

// Order returns the 1-based position of the current chunk.
func (c *Container) Order() int {
	if c == nil {
		return 0
	}

	return c.order
}

func (c *Container) skipCurrent() error {
	if c.current == nil {
		return nil
	}

	n := c.body.N + c.pad
	chunk := c.current
	c.current, c.body = nil, nil

	if n <= 0 {
		return nil
	}

	if s, ok := c.r.(io.Seeker); ok {
		_, err := s.Seek(n, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("failed to skip chunk %q: %w", chunk.ID[:], err)
		}

		return nil
	}

	chunk.Drain()

	if c.pad > 0 {
		_, err := io.CopyN(io.Discard, c.r, c.pad)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to skip pad byte: %w", err)
		}
	}

	return nil
}

// openContainerFile opens path and its RIFF container. The caller closes the
// returned file.
func openContainerFile(path string) (*os.File, *Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}

	size := int64(-1)
	if stat, err := f.Stat(); err == nil {
		size = stat.Size()
	}

	c, err := OpenContainer(f, size)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return f, c, nil
}
