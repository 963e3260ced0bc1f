package wavmeta

import (
	"errors"
	"fmt"
)

var (
	// ErrNotRiff is returned when a stream doesn't start with a RIFF/WAVE header.
	ErrNotRiff = errors.New("not a RIFF/WAVE file")
	// ErrChunkNotFound is returned when the container is exhausted before the
	// requested chunk shows up.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrTruncatedChunk is returned when a chunk declares more bytes than the
	// container (or the underlying stream) holds.
	ErrTruncatedChunk = errors.New("chunk exceeds container size")
	// ErrTruncatedRecord is matched by *TruncatedRecordError.
	ErrTruncatedRecord = errors.New("truncated wamd record")
	// ErrFieldDegraded flags a field whose bytes didn't coerce cleanly to the
	// expected type. It never aborts a decode.
	ErrFieldDegraded = errors.New("field decode degraded")
	// ErrSerialMissing is returned when the wamd chunk decodes but has no serial.
	ErrSerialMissing = errors.New("serial field missing")
	// ErrGuanoKeyNotFound is returned when a GUANO block lacks the requested key.
	ErrGuanoKeyNotFound = errors.New("guano key not found")

	errNilContainer = errors.New("nil container")
	errNilChunk     = errors.New("can't read a nil chunk")
)

// TruncatedRecordError reports a wamd record whose header or value runs past
// the end of the chunk.
type TruncatedRecordError struct {
	// Header is set when not even the 6-byte record header fits.
	Header    bool
	ID        uint16
	Offset    int
	Declared  uint32
	Remaining int
}

func (e *TruncatedRecordError) Error() string {
	if e.Header {
		return fmt.Sprintf("truncated wamd record header at offset %d: %d bytes left", e.Offset, e.Remaining)
	}

	return fmt.Sprintf("wamd record 0x%02X at offset %d declares %d bytes, only %d left",
		e.ID, e.Offset, e.Declared, e.Remaining)
}

// Is lets errors.Is match the ErrTruncatedRecord sentinel.
func (e *TruncatedRecordError) Is(target error) bool {
	return target == ErrTruncatedRecord
}

// Warning is a non-fatal issue met while decoding. The decode carried on.
type Warning struct {
	Key     string
	Offset  int
	Message string
}

func (w Warning) String() string {
	if w.Key == "" {
		return fmt.Sprintf("offset %d: %s", w.Offset, w.Message)
	}

	return fmt.Sprintf("%s (at offset %d): %s", w.Key, w.Offset, w.Message)
}

// Err returns the warning as an error wrapping ErrFieldDegraded.
func (w Warning) Err() error {
	return fmt.Errorf("%w: %s", ErrFieldDegraded, w.String())
}
