package wavmeta

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

var errNoGuanoSource = errors.New("no guano source configured")

// Source identifies where a serial number came from.
type Source int

const (
	// SourceNone means no source had a serial.
	SourceNone Source = iota
	// SourceWamd is the wamd chunk.
	SourceWamd
	// SourceGuano is the GUANO block.
	SourceGuano
)

func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceWamd:
		return "wamd"
	case SourceGuano:
		return "guano"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Attempt records why a source was skipped.
type Attempt struct {
	Source Source
	Err    error
}

// Resolution is the outcome of resolving a file's serial number. Serial is
// always set, to SerialUnknown when Source is SourceNone.
type Resolution struct {
	Path     string
	Serial   string
	Source   Source
	Attempts []Attempt
}

// Resolver looks up recorder serial numbers, trying the wamd chunk first and
// the GUANO block second. A Resolver holds no per-file state and may be used
// from several goroutines. The zero value reads wamd chunks only and logs
// nothing.
type Resolver struct {
	guano      GuanoLookup
	logger     *slog.Logger
	decodeOpts []DecodeOption
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGuano sets the fallback GUANO source. Passing nil disables the
// fallback.
func WithGuano(g GuanoLookup) ResolverOption {
	return func(r *Resolver) {
		r.guano = g
	}
}

// WithLogger sets the logger that receives stage failures.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDecodeOptions sets the options used to decode wamd chunks.
func WithDecodeOptions(opts ...DecodeOption) ResolverOption {
	return func(r *Resolver) {
		r.decodeOpts = append(r.decodeOpts, opts...)
	}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewResolver returns a Resolver reading GUANO blocks from the file itself.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		guano:  GuanoReader{},
		logger: discardLogger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SerialOf returns the serial number of the recorder that wrote path, or
// SerialUnknown. It never fails.
func (r *Resolver) SerialOf(path string) string {
	return r.Resolve(path).Serial
}

// Resolve runs the lookup chain for path:
//
//  1. the wamd chunk's serial field (a non RIFF/WAVE file skips this step
//     without scanning);
//  2. the GUANO "Serial" field;
//  3. SerialUnknown.
//
// Each failed step is recorded in Attempts and logged; none is returned.
func (r *Resolver) Resolve(path string) Resolution {
	res := Resolution{
		Path:   path,
		Serial: SerialUnknown,
		Source: SourceNone,
	}

	stages := []struct {
		source Source
		lookup func(string) (string, error)
	}{
		{SourceWamd, r.wamdSerial},
		{SourceGuano, r.guanoSerial},
	}

	for _, stage := range stages {
		serial, err := stage.lookup(path)
		if err == nil {
			res.Serial = serial
			res.Source = stage.source

			return res
		}

		res.Attempts = append(res.Attempts, Attempt{Source: stage.source, Err: err})
		r.logStage(path, stage.source, err)
	}

	r.log().Debug("serial not found", "path", path)

	return res
}

func (r *Resolver) wamdSerial(path string) (string, error) {
	md, err := ReadWAMD(path, r.decodeOpts...)
	if err != nil {
		return "", err
	}

	for _, w := range md.Warnings() {
		r.log().Debug("wamd field degraded", "path", path, "warning", w.String())
	}

	serial, ok := md.Serial()
	if !ok {
		return "", ErrSerialMissing
	}

	return serial, nil
}

func (r *Resolver) guanoSerial(path string) (string, error) {
	if r.guano == nil {
		return "", errNoGuanoSource
	}

	return r.guano.Lookup(path, "Serial")
}

func (r *Resolver) logStage(path string, source Source, err error) {
	var truncated *TruncatedRecordError

	switch {
	case errors.As(err, &truncated), errors.Is(err, ErrTruncatedChunk):
		r.log().Warn("corrupt metadata, falling back",
			"path", path, "source", source.String(), "error", err)
	default:
		r.log().Debug("metadata source unavailable",
			"path", path, "source", source.String(), "error", err)
	}
}

func (r *Resolver) log() *slog.Logger {
	if r.logger == nil {
		return discardLogger
	}

	return r.logger
}
