package wavmeta

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cwbudde/wavmeta/internal/wavtest"
)

type fakeGuano struct {
	mu     sync.Mutex
	values map[string]string
	calls  []string
}

func (f *fakeGuano) Lookup(path, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, path)

	v, ok := f.values[path]
	if !ok || key != "Serial" {
		return "", ErrGuanoKeyNotFound
	}

	return v, nil
}

func TestResolverPrefersWamd(t *testing.T) {
	dir := t.TempDir()
	path := wavtest.WriteFile(t, dir, "both.wav", wavtest.RIFF(
		wavtest.NewChunk("wamd", wavtest.WamdRecord(WamdSerial, []byte("WAMD-1"))),
		wavtest.NewChunk("guan", wavtest.Guano("Serial: GUANO-1")),
	))

	guano := &fakeGuano{values: map[string]string{path: "GUANO-1"}}
	r := NewResolver(WithGuano(guano))

	res := r.Resolve(path)
	if res.Serial != "WAMD-1" || res.Source != SourceWamd {
		t.Fatalf("resolution=%+v, want WAMD-1 from wamd", res)
	}

	if len(guano.calls) != 0 {
		t.Fatalf("guano consulted %d times, want 0", len(guano.calls))
	}

	if len(res.Attempts) != 0 {
		t.Fatalf("attempts=%v, want none", res.Attempts)
	}
}

func TestResolverFallsBackToGuano(t *testing.T) {
	dir := t.TempDir()
	path := wavtest.WriteFile(t, dir, "guano.wav", wavtest.RIFF(
		wavtest.Fmt(1, 8000, 16),
		wavtest.NewChunk("guan", wavtest.Guano("GUANO|Version: 1.0", "Serial: EMT-42")),
		wavtest.Data(16),
	))

	res := NewResolver().Resolve(path)
	if res.Serial != "EMT-42" || res.Source != SourceGuano {
		t.Fatalf("resolution=%+v, want EMT-42 from guano", res)
	}

	if len(res.Attempts) != 1 || !errors.Is(res.Attempts[0].Err, ErrChunkNotFound) {
		t.Fatalf("attempts=%v, want one ErrChunkNotFound", res.Attempts)
	}
}

func TestResolverReturnsSentinel(t *testing.T) {
	dir := t.TempDir()
	path := wavtest.WriteFile(t, dir, "bare.wav", wavtest.RIFF(wavtest.Fmt(1, 8000, 16), wavtest.Data(16)))

	r := NewResolver()

	if got := r.SerialOf(path); got != SerialUnknown {
		t.Fatalf("serial=%q, want %q", got, SerialUnknown)
	}

	if got := r.SerialOf(dir + "/missing.wav"); got != "NA" {
		t.Fatalf("serial=%q, want NA for a missing file", got)
	}

	res := r.Resolve(path)
	if res.Source != SourceNone || len(res.Attempts) != 2 {
		t.Fatalf("resolution=%+v, want two failed attempts", res)
	}
}

func TestResolverCorruptHeaderSkipsToGuano(t *testing.T) {
	dir := t.TempDir()
	data := wavtest.RIFF(wavtest.NewChunk("wamd", wavtest.WamdRecord(WamdSerial, []byte("HIDDEN"))))
	copy(data[0:4], "JUNK")
	path := wavtest.WriteFile(t, dir, "corrupt.wav", data)

	guano := &fakeGuano{values: map[string]string{path: "FROM-GUANO"}}
	res := NewResolver(WithGuano(guano)).Resolve(path)

	if res.Serial != "FROM-GUANO" || res.Source != SourceGuano {
		t.Fatalf("resolution=%+v, want FROM-GUANO", res)
	}

	if !errors.Is(res.Attempts[0].Err, ErrNotRiff) {
		t.Fatalf("wamd attempt err=%v, want ErrNotRiff", res.Attempts[0].Err)
	}

	if len(guano.calls) != 1 || guano.calls[0] != path {
		t.Fatalf("guano calls=%v, want [%s]", guano.calls, path)
	}
}

func TestResolverTruncatedRecordIsLogged(t *testing.T) {
	dir := t.TempDir()
	record := wavtest.WamdRecord(WamdSerial, []byte("ABCDEF"))
	path := wavtest.WriteFile(t, dir, "trunc.wav", wavtest.RIFF(
		wavtest.NewChunk("wamd", record[:len(record)-3]),
		wavtest.NewChunk("guan", wavtest.Guano("Serial: FALLBACK")),
	))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res := NewResolver(WithLogger(logger)).Resolve(path)
	if res.Serial != "FALLBACK" {
		t.Fatalf("serial=%q, want FALLBACK", res.Serial)
	}

	if !errors.Is(res.Attempts[0].Err, ErrTruncatedRecord) {
		t.Fatalf("attempt err=%v, want ErrTruncatedRecord", res.Attempts[0].Err)
	}

	out := logs.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "corrupt metadata") {
		t.Fatalf("expected a warning in the log, got:\n%s", out)
	}
}

func TestResolverWamdWithoutSerial(t *testing.T) {
	dir := t.TempDir()
	path := wavtest.WriteFile(t, dir, "noserial.wav", wavtest.RIFF(
		wavtest.NewChunk("wamd", wavtest.WamdRecord(WamdModel, []byte("SM3"))),
	))

	res := NewResolver(WithGuano(nil)).Resolve(path)
	if res.Serial != SerialUnknown {
		t.Fatalf("serial=%q, want %q", res.Serial, SerialUnknown)
	}

	if !errors.Is(res.Attempts[0].Err, ErrSerialMissing) {
		t.Fatalf("wamd err=%v, want ErrSerialMissing", res.Attempts[0].Err)
	}

	if !errors.Is(res.Attempts[1].Err, errNoGuanoSource) {
		t.Fatalf("guano err=%v, want errNoGuanoSource", res.Attempts[1].Err)
	}
}

func TestResolverEmptySerialIsPresent(t *testing.T) {
	dir := t.TempDir()
	path := wavtest.WriteFile(t, dir, "empty.wav", wavtest.RIFF(
		wavtest.NewChunk("wamd", wavtest.WamdRecord(WamdSerial, nil)),
		wavtest.NewChunk("guan", wavtest.Guano("Serial: G")),
	))

	res := NewResolver().Resolve(path)
	if res.Serial != "" || res.Source != SourceWamd {
		t.Fatalf("resolution=%+v, want empty serial from wamd", res)
	}
}

func TestZeroResolver(t *testing.T) {
	var r Resolver

	missing := filepath.Join(t.TempDir(), "missing.wav")
	if got := r.SerialOf(missing); got != SerialUnknown {
		t.Fatalf("SerialOf=%q, want %q", got, SerialUnknown)
	}

	res := r.Resolve(missing)
	if len(res.Attempts) != 2 || !errors.Is(res.Attempts[1].Err, errNoGuanoSource) {
		t.Fatalf("attempts=%v, want wamd failure then errNoGuanoSource", res.Attempts)
	}

	path := wavtest.WriteFile(t, t.TempDir(), "ok.wav", wavtest.RIFF(
		wavtest.NewChunk("wamd", wavtest.WamdRecord(WamdSerial, []byte("Z1"))),
	))

	if got := (&Resolver{}).SerialOf(path); got != "Z1" {
		t.Fatalf("SerialOf=%q, want Z1", got)
	}
}

func TestSourceString(t *testing.T) {
	tests := map[Source]string{
		SourceNone:  "none",
		SourceWamd:  "wamd",
		SourceGuano: "guano",
		Source(9):   "source(9)",
	}

	for src, want := range tests {
		if got := src.String(); got != want {
			t.Fatalf("String=%q, want %q", got, want)
		}
	}
}
