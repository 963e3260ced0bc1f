package wavmeta

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-audio/riff"
)

const (
	bextDescriptionLen         = 256
	bextOriginatorLen          = 32
	bextOriginatorReferenceLen = 32
	bextOriginationDateLen     = 10
	bextOriginationTimeLen     = 8
	bextUMIDLen                = 64
	bextReservedLen            = 190
)

// CIDBext is the chunk ID of the Broadcast Wave extension chunk.
var CIDBext = [4]byte{'b', 'e', 'x', 't'}

// Broadcast holds the text fields of a bext chunk. Some field recorders
// fill Originator with the device name and keep the start of the recording
// in OriginationDate and OriginationTime.
type Broadcast struct {
	Description         string
	Originator          string
	OriginatorReference string
	OriginationDate     string
	OriginationTime     string
	// TimeReference is the first sample's offset since midnight.
	TimeReference uint64
	Version       uint16
	CodingHistory string
}

// DecodeBroadcastChunk decodes a bext chunk body. Short bodies leave the
// missing fields empty.
func DecodeBroadcastChunk(buf []byte) *Broadcast {
	b := &Broadcast{}
	offset := 0

	take := func(n int) []byte {
		out := make([]byte, n)
		if offset < len(buf) {
			end := min(offset+n, len(buf))
			copy(out, buf[offset:end])
		}

		offset += n

		return out
	}

	readFixedString := func(n int) string {
		s := nullTermStr(take(n))
		return strings.TrimRight(s, " ")
	}

	b.Description = readFixedString(bextDescriptionLen)
	b.Originator = readFixedString(bextOriginatorLen)
	b.OriginatorReference = readFixedString(bextOriginatorReferenceLen)
	b.OriginationDate = readFixedString(bextOriginationDateLen)
	b.OriginationTime = readFixedString(bextOriginationTimeLen)

	timeRefLow := binary.LittleEndian.Uint32(take(4))
	timeRefHigh := binary.LittleEndian.Uint32(take(4))
	b.TimeReference = uint64(timeRefHigh)<<32 | uint64(timeRefLow)
	b.Version = binary.LittleEndian.Uint16(take(2))

	offset += bextUMIDLen + bextReservedLen

	if offset < len(buf) {
		b.CodingHistory = trimPadding(string(bytes.TrimRight(buf[offset:], "\x00")))
	}

	return b
}

// Origination returns the recording start from OriginationDate and
// OriginationTime, read in loc. Any single character may separate the
// date and time parts.
func (b *Broadcast) Origination(loc *time.Location) (time.Time, bool) {
	if b == nil || len(b.OriginationDate) != bextOriginationDateLen || len(b.OriginationTime) != bextOriginationTimeLen {
		return time.Time{}, false
	}

	d := []byte(b.OriginationDate)
	d[4], d[7] = '-', '-'
	c := []byte(b.OriginationTime)
	c[2], c[5] = ':', ':'

	t, err := time.ParseInLocation(time.DateTime, string(d)+" "+string(c), loc)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

type bextChunkHandler struct{}

func (h *bextChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDBext
}

func (h *bextChunkHandler) Decode(md *FileMetadata, c *Container, ch *riff.Chunk) error {
	body, err := c.ReadBody(ch)
	if err != nil {
		return err
	}

	md.Broadcast = DecodeBroadcastChunk(body)

	return nil
}
