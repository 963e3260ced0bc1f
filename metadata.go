package wavmeta

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/riff"
)

// FileMetadata is everything a full scan found in a file.
type FileMetadata struct {
	Path string

	// Format is nil when the file has no readable fmt chunk.
	Format *FmtChunk
	// Wamd is nil when the file has no decodable wamd chunk.
	Wamd *Metadata
	// Guano is nil when the file has no guan chunk.
	Guano *Guano
	// Broadcast is nil when the file has no bext chunk.
	Broadcast *Broadcast
	// Info holds the LIST/INFO fields keyed by readable name.
	Info map[string]string

	Chunks []ChunkInfo
	// Errors collects handler failures. The scan carries on past them.
	Errors []error
}

// Serial returns the serial number the way a Resolver would, without
// touching the file again.
func (m *FileMetadata) Serial() (string, Source) {
	if m == nil {
		return SerialUnknown, SourceNone
	}

	if serial, ok := m.Wamd.Serial(); ok {
		return serial, SourceWamd
	}

	if serial, ok := m.Guano.Get("Serial"); ok {
		return serial, SourceGuano
	}

	return SerialUnknown, SourceNone
}

// Chunk returns the first chunk with the given id in the inventory.
func (m *FileMetadata) Chunk(id [4]byte) (ChunkInfo, bool) {
	if m == nil {
		return ChunkInfo{}, false
	}

	for _, ch := range m.Chunks {
		if ch.ID == id {
			return ch, true
		}
	}

	return ChunkInfo{}, false
}

// ScanMetadata walks every chunk of a RIFF/WAVE stream, decoding the ones the
// registry knows and recording the rest. size is the stream length or -1.
// A nil registry means NewChunkRegistry().
func ScanMetadata(r io.Reader, size int64, registry *ChunkRegistry) (*FileMetadata, error) {
	c, err := OpenContainer(r, size)
	if err != nil {
		return nil, err
	}

	if registry == nil {
		registry = NewChunkRegistry()
	}

	md := &FileMetadata{}
	seenData := false

	for {
		chunk, err := c.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return md, err
		}

		info := ChunkInfo{
			ID:         chunk.ID,
			Size:       uint32(chunk.Size),
			Order:      c.Order(),
			BeforeData: !seenData,
		}

		if chunk.ID == riff.DataFormatID {
			seenData = true
			info.BeforeData = false
		} else {
			handled, err := registry.Decode(md, c, chunk)
			if err != nil {
				md.Errors = append(md.Errors, fmt.Errorf("chunk %d %q: %w", info.Order, chunk.ID[:], err))
			}

			info.Handled = handled && err == nil
		}

		md.Chunks = append(md.Chunks, info)
	}

	return md, nil
}

// ReadMetadata scans the file at path with the default registry.
func ReadMetadata(path string, opts ...DecodeOption) (*FileMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	size := int64(-1)
	if stat, err := f.Stat(); err == nil {
		size = stat.Size()
	}

	md, err := ScanMetadata(f, size, NewChunkRegistry(opts...))
	if md != nil {
		md.Path = path
	}

	return md, err
}
