package wavmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	wavFormatPCM        = 0x0001
	wavFormatADPCM      = 0x0002
	wavFormatIEEEFloat  = 0x0003
	wavFormatALaw       = 0x0006
	wavFormatMuLaw      = 0x0007
	wavFormatGSM610     = 0x0031
	wavFormatExtensible = 0xFFFE

	fmtBaseLen       = 16
	fmtExtensibleLen = 22
)

var errFmtTooShort = errors.New("fmt chunk too short")

// FmtChunk stores the parsed WAV fmt chunk, including extensible metadata.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	ExtraData      []byte
	Extensible     *FmtExtensible
}

// FmtExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FmtExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
	ExtraData          []byte
}

// EffectiveFormatTag returns the format tag, looking through the extensible
// sub format GUID.
func (f *FmtChunk) EffectiveFormatTag() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == wavFormatExtensible && f.Extensible != nil {
		return binary.LittleEndian.Uint16(f.Extensible.SubFormat[:2])
	}

	return f.FormatTag
}

// FormatName names the effective encoding.
func (f *FmtChunk) FormatName() string {
	switch tag := f.EffectiveFormatTag(); tag {
	case wavFormatPCM:
		return "pcm"
	case wavFormatADPCM:
		return "adpcm"
	case wavFormatIEEEFloat:
		return "float"
	case wavFormatALaw:
		return "alaw"
	case wavFormatMuLaw:
		return "mulaw"
	case wavFormatGSM610:
		return "gsm610"
	default:
		return fmt.Sprintf("0x%04X", tag)
	}
}

// DecodeFmtChunk parses the body of a fmt chunk.
func DecodeFmtChunk(body []byte) (*FmtChunk, error) {
	if len(body) < fmtBaseLen {
		return nil, fmt.Errorf("%w: %d bytes", errFmtTooShort, len(body))
	}

	f := &FmtChunk{
		FormatTag:      binary.LittleEndian.Uint16(body[0:2]),
		NumChannels:    binary.LittleEndian.Uint16(body[2:4]),
		SampleRate:     binary.LittleEndian.Uint32(body[4:8]),
		AvgBytesPerSec: binary.LittleEndian.Uint32(body[8:12]),
		BlockAlign:     binary.LittleEndian.Uint16(body[12:14]),
		BitsPerSample:  binary.LittleEndian.Uint16(body[14:16]),
	}

	if len(body) < fmtBaseLen+2 {
		return f, nil
	}

	extraSize := int(binary.LittleEndian.Uint16(body[16:18]))
	if extraSize > len(body)-fmtBaseLen-2 {
		return nil, fmt.Errorf("failed to read fmt extension data: %d bytes declared: %w", extraSize, ErrTruncatedChunk)
	}

	f.ExtraData = append([]byte(nil), body[18:18+extraSize]...)

	if f.FormatTag != wavFormatExtensible || extraSize < fmtExtensibleLen {
		return f, nil
	}

	ext := &FmtExtensible{}
	ext.ValidBitsPerSample = binary.LittleEndian.Uint16(f.ExtraData[0:2])
	ext.ChannelMask = binary.LittleEndian.Uint32(f.ExtraData[2:6])
	copy(ext.SubFormat[:], f.ExtraData[6:22])

	if len(f.ExtraData) > fmtExtensibleLen {
		ext.ExtraData = append(ext.ExtraData, f.ExtraData[fmtExtensibleLen:]...)
	}

	f.Extensible = ext

	return f, nil
}
