package wavmeta

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cwbudde/wavmeta/internal/wavtest"
)

func TestDecodeWAMDSerialRecord(t *testing.T) {
	data := []byte{0x02, 0x00, 0x03, 0x00, 0x00, 0x00, 'A', 'B', 'C'}

	md, err := DecodeWAMD(data)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	if md.Len() != 1 {
		t.Fatalf("Len=%d, want 1", md.Len())
	}

	serial, ok := md.Serial()
	if !ok || serial != "ABC" {
		t.Fatalf("serial=%q ok=%v, want %q", serial, ok, "ABC")
	}
}

func TestDecodeWAMDKnownFields(t *testing.T) {
	data := wavtest.Records(
		wavtest.WamdRecord(WamdVersion, wavtest.Uint16LE(3)),
		wavtest.WamdRecord(WamdModel, []byte("X")),
		wavtest.WamdRecord(WamdVoiceNotes, []byte("RIFF....WAVE")),
		wavtest.WamdRecord(WamdSerial, []byte("ABC123")),
		wavtest.WamdRecord(WamdProgram, []byte{0xDE, 0xAD, 0xBE, 0xEF}),
		wavtest.WamdRecord(WamdRunState, []byte{1}),
		wavtest.WamdRecord(WamdPadding, nil),
	)

	md, err := DecodeWAMD(data)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	version, ok := md.Uint16("version")
	if !ok || version != 3 {
		t.Fatalf("version=%d ok=%v, want 3", version, ok)
	}

	if v, _ := md.Text("model"); v != "X" {
		t.Fatalf("model=%q, want %q", v, "X")
	}

	if v, _ := md.Serial(); v != "ABC123" {
		t.Fatalf("serial=%q, want %q", v, "ABC123")
	}

	want := []string{"model", "serial", "version"}
	if got := md.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys=%v, want %v", got, want)
	}

	for _, id := range []uint16{WamdVoiceNotes, WamdProgram, WamdRunState, WamdPadding} {
		if _, ok := md.Get(WamdKey(id)); ok {
			t.Fatalf("dropped id 0x%X present", id)
		}
	}

	if w := md.Warnings(); len(w) != 0 {
		t.Fatalf("warnings=%v, want none", w)
	}
}

func TestDecodeWAMDIsIdempotent(t *testing.T) {
	data := wavtest.Records(
		wavtest.WamdRecord(WamdVersion, wavtest.Uint16LE(1)),
		wavtest.WamdRecord(WamdSerial, []byte("S4U01234")),
		wavtest.WamdRecord(0x42, []byte{0xff, 'x'}),
	)

	first, err := DecodeWAMD(data)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	second, err := DecodeWAMD(data)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decodes differ:\n%+v\n%+v", first, second)
	}
}

func TestDecodeWAMDOddDroppedRecordKeepsSync(t *testing.T) {
	data := wavtest.Records(
		wavtest.WamdRecord(WamdPadding, []byte{0, 0, 0}),
		wavtest.WamdRecord(WamdSerial, []byte("SM4")),
		wavtest.WamdRecord(WamdVoiceNotes, []byte{1, 2, 3, 4, 5}),
		wavtest.WamdRecord(WamdModel, []byte("Song Meter SM4")),
	)

	md, err := DecodeWAMD(data)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	if v, _ := md.Serial(); v != "SM4" {
		t.Fatalf("serial=%q, want %q", v, "SM4")
	}

	if v, _ := md.Text("model"); v != "Song Meter SM4" {
		t.Fatalf("model=%q, want %q", v, "Song Meter SM4")
	}
}

func TestDecodeWAMDTruncated(t *testing.T) {
	full := wavtest.WamdRecord(WamdSerial, []byte("ABCDEF"))

	tests := []struct {
		name   string
		data   []byte
		header bool
	}{
		{name: "value past end", data: full[:len(full)-2]},
		{name: "huge declared length", data: []byte{0x02, 0x00, 0xff, 0xff, 0xff, 0xff, 'A'}},
		{name: "partial header", data: append(wavtest.WamdRecord(WamdModel, []byte("X")), 0x02, 0x00, 0x01), header: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := DecodeWAMD(tt.data)
			if md != nil {
				t.Fatalf("expected no metadata, got %+v", md)
			}

			if !errors.Is(err, ErrTruncatedRecord) {
				t.Fatalf("err=%v, want ErrTruncatedRecord", err)
			}

			var terr *TruncatedRecordError
			if !errors.As(err, &terr) {
				t.Fatalf("err=%T, want *TruncatedRecordError", err)
			}

			if terr.Header != tt.header {
				t.Fatalf("Header=%v, want %v", terr.Header, tt.header)
			}
		})
	}
}

func TestDecodeWAMDEmpty(t *testing.T) {
	md, err := DecodeWAMD(nil)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	if md.Len() != 0 {
		t.Fatalf("Len=%d, want 0", md.Len())
	}

	if _, ok := md.Serial(); ok {
		t.Fatalf("expected no serial")
	}
}

func TestDecodeWAMDUnknownIDKeepsNumericKey(t *testing.T) {
	data := wavtest.Records(
		wavtest.WamdRecord(WamdFirmware, []byte("1.2.3\x00")),
		wavtest.WamdRecord(0x1234, []byte("future")),
	)

	md, err := DecodeWAMD(data)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{key: "3", want: "1.2.3"},
		{key: "4660", want: "future"},
	}

	for _, tt := range tests {
		got, ok := md.Text(tt.key)
		if !ok || got != tt.want {
			t.Fatalf("%s=%q ok=%v, want %q", tt.key, got, ok, tt.want)
		}
	}

	f, _ := md.Get("4660")
	if f.ID != 0x1234 || f.Kind != KindText || string(f.Raw) != "future" {
		t.Fatalf("field=%+v", f)
	}
}

func TestDecodeWAMDDegradedFields(t *testing.T) {
	data := wavtest.Records(
		wavtest.WamdRecord(WamdSerial, []byte{'S', 0xff, 'N'}),
		wavtest.WamdRecord(WamdVersion, []byte{7}),
		wavtest.WamdRecord(WamdModel, []byte("EMT")),
	)

	md, err := DecodeWAMD(data)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	serial, _ := md.Get("serial")
	if !serial.Degraded || serial.Text != "S�N" {
		t.Fatalf("serial=%+v, want degraded replacement text", serial)
	}

	if _, ok := md.Uint16("version"); ok {
		t.Fatalf("expected a 1 byte version to be degraded")
	}

	if v, _ := md.Text("version"); v != "07" {
		t.Fatalf("version text=%q, want %q", v, "07")
	}

	if v, _ := md.Text("model"); v != "EMT" {
		t.Fatalf("model=%q, want %q", v, "EMT")
	}

	warnings := md.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("warnings=%v, want 2", warnings)
	}

	if !errors.Is(warnings[0].Err(), ErrFieldDegraded) {
		t.Fatalf("warning err=%v, want ErrFieldDegraded", warnings[0].Err())
	}

	if warnings[0].Key != "serial" || warnings[1].Key != "version" {
		t.Fatalf("warning keys=%q,%q", warnings[0].Key, warnings[1].Key)
	}
}

func TestDecodeWAMDLastDuplicateWins(t *testing.T) {
	data := wavtest.Records(
		wavtest.WamdRecord(WamdSerial, []byte("OLD")),
		wavtest.WamdRecord(WamdSerial, []byte("NEW")),
	)

	md, err := DecodeWAMD(data)
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	if v, _ := md.Serial(); v != "NEW" {
		t.Fatalf("serial=%q, want %q", v, "NEW")
	}
}

func TestDecodeWAMDVendorNames(t *testing.T) {
	data := wavtest.Records(
		wavtest.WamdRecord(WamdFirmware, []byte("2.3.1")),
		wavtest.WamdRecord(WamdGPSFirst, []byte("WGS84,45.5,N,122.25,W,101.5")),
		wavtest.WamdRecord(WamdTimeExpansion, wavtest.Uint16LE(10)),
		wavtest.WamdRecord(WamdSerial, []byte("S4A01234")),
	)

	md, err := DecodeWAMD(data, WithVendorNames())
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	if v, _ := md.Text("firmware"); v != "2.3.1" {
		t.Fatalf("firmware=%q, want %q", v, "2.3.1")
	}

	te, ok := md.Uint16("time_expansion")
	if !ok || te != 10 {
		t.Fatalf("time_expansion=%d ok=%v, want 10", te, ok)
	}

	gps, _ := md.Get("gpsfirst")
	if gps.GPS == nil {
		t.Fatalf("gpsfirst not parsed: %+v", gps)
	}

	want := GPSFix{Datum: "WGS84", Latitude: 45.5, Longitude: -122.25, Altitude: 102}
	if *gps.GPS != want {
		t.Fatalf("gps=%+v, want %+v", *gps.GPS, want)
	}
}

func TestDecodeWAMDCustomGPSParser(t *testing.T) {
	called := 0
	parser := func(raw []byte) (GPSFix, error) {
		called++
		return GPSFix{Datum: string(raw)}, nil
	}

	data := wavtest.WamdRecord(WamdGPSFirst, []byte("custom"))

	md, err := DecodeWAMD(data, WithVendorNames(), WithGPSParser(parser))
	if err != nil {
		t.Fatalf("DecodeWAMD failed: %v", err)
	}

	if called != 1 {
		t.Fatalf("parser called %d times, want 1", called)
	}

	f, _ := md.Get("gpsfirst")
	if f.GPS == nil || f.GPS.Datum != "custom" || f.Degraded {
		t.Fatalf("gpsfirst=%+v", f)
	}
}

func TestReadWAMD(t *testing.T) {
	dir := t.TempDir()
	path := wavtest.WriteFile(t, dir, "rec.wav", wavtest.RIFF(
		wavtest.Fmt(1, 24000, 16),
		wavtest.NewChunk("wamd", wavtest.Records(
			wavtest.WamdRecord(WamdModel, []byte("SM4BAT-FS")),
			wavtest.WamdRecord(WamdSerial, []byte("S4U09999")),
		)),
		wavtest.Data(48),
	))

	md, err := ReadWAMD(path)
	if err != nil {
		t.Fatalf("ReadWAMD failed: %v", err)
	}

	if v, _ := md.Serial(); v != "S4U09999" {
		t.Fatalf("serial=%q, want %q", v, "S4U09999")
	}

	nowamd := wavtest.WriteFile(t, dir, "plain.wav", wavtest.RIFF(wavtest.Fmt(1, 8000, 16), wavtest.Data(16)))

	_, err = ReadWAMD(nowamd)
	if !errors.Is(err, ErrChunkNotFound) {
		t.Fatalf("err=%v, want ErrChunkNotFound", err)
	}
}
