package wavmeta

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// A wamd record is a 2-byte LE id, a 4-byte LE length, then the value.
// Records are packed with no padding between them.
const recordHeaderLen = 6

// WAMD field identifiers.
const (
	WamdVersion       uint16 = 0x00
	WamdModel         uint16 = 0x01
	WamdSerial        uint16 = 0x02
	WamdFirmware      uint16 = 0x03
	WamdPrefix        uint16 = 0x04
	WamdTimestamp     uint16 = 0x05
	WamdGPSFirst      uint16 = 0x06
	WamdGPSTrack      uint16 = 0x07
	WamdSoftware      uint16 = 0x08
	WamdLicense       uint16 = 0x09
	WamdNotes         uint16 = 0x0A
	WamdAutoID        uint16 = 0x0B
	WamdManualID      uint16 = 0x0C
	WamdVoiceNotes    uint16 = 0x0D
	WamdAutoIDStats   uint16 = 0x0E
	WamdTimeExpansion uint16 = 0x0F
	WamdProgram       uint16 = 0x10
	WamdRunState      uint16 = 0x11
	WamdMicrophone    uint16 = 0x12
	WamdSensitivity   uint16 = 0x13
	WamdPadding       uint16 = 0xFFFF
)

var (
	// wamdNames is the default id to name table. Anything else is keyed by
	// its decimal id.
	wamdNames = map[uint16]string{
		WamdVersion: "version",
		WamdModel:   "model",
		WamdSerial:  "serial",
	}

	wamdVendorNames = map[uint16]string{
		WamdVersion:       "version",
		WamdModel:         "model",
		WamdSerial:        "serial",
		WamdFirmware:      "firmware",
		WamdPrefix:        "prefix",
		WamdTimestamp:     "timestamp",
		WamdGPSFirst:      "gpsfirst",
		WamdGPSTrack:      "gpstrack",
		WamdSoftware:      "software",
		WamdLicense:       "license",
		WamdNotes:         "notes",
		WamdAutoID:        "auto_id",
		WamdManualID:      "manual_id",
		WamdVoiceNotes:    "voicenotes",
		WamdAutoIDStats:   "auto_id_stats",
		WamdTimeExpansion: "time_expansion",
		WamdProgram:       "program",
		WamdRunState:      "runstate",
		WamdMicrophone:    "microphone",
		WamdSensitivity:   "sensitivity",
	}

	// wamdDropIDs are skipped without looking at the value.
	wamdDropIDs = map[uint16]struct{}{
		WamdVoiceNotes: {}, // embedded voice note .wav
		WamdProgram:    {}, // program binary
		WamdRunState:   {}, // runstate blob
		WamdPadding:    {}, // 16-bit alignment
	}

	// wamdCoerce maps field names to their value kind. Text is the default.
	wamdCoerce = map[string]ValueKind{
		"version":        KindUint16,
		"time_expansion": KindUint16,
		"gpsfirst":       KindGPS,
	}
)

// ValueKind is the decoded type of a wamd field.
type ValueKind int

const (
	// KindText is a UTF-8 string.
	KindText ValueKind = iota
	// KindUint16 is a little-endian unsigned 16-bit integer.
	KindUint16
	// KindGPS is a parsed GPS fix.
	KindGPS
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindUint16:
		return "uint16"
	case KindGPS:
		return "gps"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is a single decoded wamd record.
type Field struct {
	ID     uint16
	Key    string
	Kind   ValueKind
	Text   string
	Uint16 uint16
	GPS    *GPSFix
	// Raw holds the undecoded value bytes.
	Raw []byte
	// Degraded is set when Raw didn't coerce cleanly to Kind. Text then
	// holds a best-effort rendering.
	Degraded bool
}

// String renders the field value.
func (f Field) String() string {
	switch {
	case f.Kind == KindUint16 && !f.Degraded:
		return strconv.FormatUint(uint64(f.Uint16), 10)
	case f.Kind == KindGPS && f.GPS != nil:
		return f.GPS.String()
	default:
		return f.Text
	}
}

// Metadata is the decoded content of a wamd chunk. It is never modified
// once DecodeWAMD returns.
type Metadata struct {
	fields   map[string]Field
	warnings []Warning
}

// Get returns the field stored under key: a field name, or the decimal id
// for ids without a name.
func (m *Metadata) Get(key string) (Field, bool) {
	if m == nil {
		return Field{}, false
	}

	f, ok := m.fields[key]

	return f, ok
}

// Text returns the rendered value of key.
func (m *Metadata) Text(key string) (string, bool) {
	f, ok := m.Get(key)
	if !ok {
		return "", false
	}

	return f.String(), true
}

// Uint16 returns the integer value of key if it decoded as one.
func (m *Metadata) Uint16(key string) (uint16, bool) {
	f, ok := m.Get(key)
	if !ok || f.Kind != KindUint16 || f.Degraded {
		return 0, false
	}

	return f.Uint16, true
}

// Serial returns the recorder serial number.
func (m *Metadata) Serial() (string, bool) {
	return m.Text("serial")
}

// Keys returns the stored keys in sorted order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}

	return slices.Sorted(maps.Keys(m.fields))
}

// Len returns the number of stored fields.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}

	return len(m.fields)
}

// Warnings returns the fields that degraded during decoding.
func (m *Metadata) Warnings() []Warning {
	if m == nil {
		return nil
	}

	return slices.Clone(m.warnings)
}

// GPSParser turns the raw bytes of a gpsfirst field into a fix.
type GPSParser func(raw []byte) (GPSFix, error)

// DecodeOption configures DecodeWAMD.
type DecodeOption func(*decodeOptions)

type decodeOptions struct {
	names map[uint16]string
	gps   GPSParser
}

func defaultDecodeOptions() *decodeOptions {
	return &decodeOptions{
		names: wamdNames,
		gps:   parseGPSBytes,
	}
}

// WithVendorNames names every field id known from Wildlife Acoustics
// recorders (firmware, gpsfirst, time_expansion, ...) instead of only
// version, model and serial.
func WithVendorNames() DecodeOption {
	return func(o *decodeOptions) {
		o.names = wamdVendorNames
	}
}

// WithGPSParser replaces the gpsfirst parser.
func WithGPSParser(p GPSParser) DecodeOption {
	return func(o *decodeOptions) {
		if p != nil {
			o.gps = p
		}
	}
}

// WamdKey returns the map key used for a field id under the default table.
func WamdKey(id uint16) string {
	return fieldKey(wamdNames, id)
}

func fieldKey(names map[uint16]string, id uint16) string {
	if name, ok := names[id]; ok {
		return name
	}

	return strconv.FormatUint(uint64(id), 10)
}

// DecodeWAMD decodes the body of a wamd chunk.
//
// A record running past the end of data fails the whole decode with a
// *TruncatedRecordError and no Metadata. A field whose value doesn't coerce
// is kept, flagged Degraded, and reported in Warnings. A repeated key keeps
// the last value.
func DecodeWAMD(data []byte, opts ...DecodeOption) (*Metadata, error) {
	options := defaultDecodeOptions()
	for _, opt := range opts {
		opt(options)
	}

	md := &Metadata{fields: make(map[string]Field)}

	offset := 0
	for offset < len(data) {
		rest := len(data) - offset
		if rest < recordHeaderLen {
			return nil, &TruncatedRecordError{Header: true, Offset: offset, Remaining: rest}
		}

		id := binary.LittleEndian.Uint16(data[offset:])
		size := binary.LittleEndian.Uint32(data[offset+2:])
		start := offset + recordHeaderLen

		if uint64(size) > uint64(len(data)-start) {
			return nil, &TruncatedRecordError{
				ID:        id,
				Offset:    offset,
				Declared:  size,
				Remaining: len(data) - start,
			}
		}

		end := start + int(size)

		if _, drop := wamdDropIDs[id]; !drop {
			field := options.decodeField(id, data[start:end])
			if field.Degraded {
				md.warnings = append(md.warnings, Warning{
					Key:     field.Key,
					Offset:  offset,
					Message: fmt.Sprintf("%s value of %d bytes did not decode cleanly", field.Kind, size),
				})
			}

			md.fields[field.Key] = field
		}

		offset = end
	}

	return md, nil
}

func (o *decodeOptions) decodeField(id uint16, raw []byte) Field {
	key := fieldKey(o.names, id)
	field := Field{
		ID:   id,
		Key:  key,
		Kind: wamdCoerce[key],
		Raw:  slices.Clone(raw),
	}

	switch field.Kind {
	case KindUint16:
		if len(raw) < 2 {
			field.Degraded = true
			field.Text = fmt.Sprintf("%x", raw)

			break
		}

		field.Uint16 = binary.LittleEndian.Uint16(raw)
		if len(raw) != 2 {
			field.Degraded = true
			field.Text = strconv.FormatUint(uint64(field.Uint16), 10)
		}
	case KindGPS:
		field.Text, field.Degraded = decodeText(raw)

		fix, err := o.gps(raw)
		if err != nil {
			field.Degraded = true

			break
		}

		field.GPS = &fix
	default:
		field.Text, field.Degraded = decodeText(raw)
	}

	return field
}

// decodeText decodes raw as UTF-8, dropping trailing NUL padding. Invalid
// sequences are replaced with U+FFFD and reported as degraded.
func decodeText(raw []byte) (string, bool) {
	s := strings.TrimRight(string(raw), "\x00")
	if utf8.ValidString(s) {
		return s, false
	}

	return strings.ToValidUTF8(s, string(utf8.RuneError)), true
}

// ReadWAMD finds and decodes the wamd chunk of the file at path.
func ReadWAMD(path string, opts ...DecodeOption) (*Metadata, error) {
	f, c, err := openContainerFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	chunk, err := c.Find(CIDWamd)
	if err != nil {
		return nil, err
	}

	body, err := c.ReadBody(chunk)
	if err != nil {
		return nil, err
	}

	return DecodeWAMD(body, opts...)
}
