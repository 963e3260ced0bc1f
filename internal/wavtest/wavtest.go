// Package wavtest builds small RIFF/WAVE files for tests.
package wavtest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Chunk is a RIFF chunk. Size is written to the header as is, so it can
// disagree with len(Data).
type Chunk struct {
	ID   string
	Size uint32
	Data []byte
}

// NewChunk returns a chunk whose size matches its data.
func NewChunk(id string, data []byte) Chunk {
	return Chunk{ID: id, Size: uint32(len(data)), Data: data}
}

// RIFF lays out a RIFF/WAVE file with the chunks in order, padding odd sized
// bodies.
func RIFF(chunks ...Chunk) []byte {
	body := []byte("WAVE")

	for _, ch := range chunks {
		body = append(body, ch.ID...)
		body = binary.LittleEndian.AppendUint32(body, ch.Size)
		body = append(body, ch.Data...)

		if len(ch.Data)%2 == 1 {
			body = append(body, 0)
		}
	}

	out := append([]byte("RIFF"), binary.LittleEndian.AppendUint32(nil, uint32(len(body)))...)

	return append(out, body...)
}

// WamdRecord encodes one wamd record.
func WamdRecord(id uint16, value []byte) []byte {
	rec := binary.LittleEndian.AppendUint16(nil, id)
	rec = binary.LittleEndian.AppendUint32(rec, uint32(len(value)))

	return append(rec, value...)
}

// Records concatenates wamd records into a chunk body.
func Records(records ...[]byte) []byte {
	var out []byte
	for _, r := range records {
		out = append(out, r...)
	}

	return out
}

// Uint16LE encodes v as two little-endian bytes.
func Uint16LE(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

// Guano returns a guan chunk body holding the lines.
func Guano(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

// Fmt returns a PCM fmt chunk.
func Fmt(channels, sampleRate, bitDepth int) Chunk {
	blockAlign := channels * bitDepth / 8

	var data []byte
	data = binary.LittleEndian.AppendUint16(data, 1)
	data = binary.LittleEndian.AppendUint16(data, uint16(channels))
	data = binary.LittleEndian.AppendUint32(data, uint32(sampleRate))
	data = binary.LittleEndian.AppendUint32(data, uint32(sampleRate*blockAlign))
	data = binary.LittleEndian.AppendUint16(data, uint16(blockAlign))
	data = binary.LittleEndian.AppendUint16(data, uint16(bitDepth))

	return NewChunk("fmt ", data)
}

// Data returns a silent data chunk of n bytes.
func Data(n int) Chunk {
	return NewChunk("data", make([]byte, n))
}

// WriteFile writes data to dir/name, creating parent directories, and
// returns the path.
func WriteFile(tb testing.TB, dir, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(dir, name)

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		tb.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}

	return path
}
