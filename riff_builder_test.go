package wavmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/wavmeta/internal/wavtest"
)

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// onlyReader hides the Seeker of the wrapped reader.
type onlyReader struct {
	io.Reader
}

// parseWavChunks is an independent chunk walker used to check the scanner.
func parseWavChunks(data []byte) ([]wavtest.Chunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]wavtest.Chunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, wavtest.Chunk{ID: id, Size: size, Data: payload})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}
