package wavmeta

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// placeholderSize is the size of the empty files some recorders leave behind
// when a recording is aborted. Such files have a valid header and no audio.
const placeholderSize = 262144

var (
	errPlaceholderFile = errors.New("placeholder recording")
	errNoAudio         = errors.New("no audio frames")
)

// WavInfo describes the audio stream of a wav file.
type WavInfo struct {
	Path     string
	Size     int64
	Format   *audio.Format
	BitDepth int
	// Frames is the number of sample frames in the data chunk.
	Frames   int64
	Duration time.Duration
}

// CheckWav opens path and verifies it is a RIFF/WAVE file worth reading.
// Placeholder files of exactly 256 KiB are rejected.
func CheckWav(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	if stat.Size() == placeholderSize {
		return fmt.Errorf("%w: %d bytes", errPlaceholderFile, stat.Size())
	}

	f, _, err := openContainerFile(path)
	if err != nil {
		return err
	}

	return f.Close()
}

// IsValidWav reports whether CheckWav accepts path.
func IsValidWav(path string) bool {
	return CheckWav(path) == nil
}

// Inspect reads the fmt and data chunk headers of the file at path.
func Inspect(path string) (*WavInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := inspect(f)
	if err != nil {
		return nil, fmt.Errorf("inspect %q: %w", path, err)
	}

	info.Path = path

	if stat, err := f.Stat(); err == nil {
		info.Size = stat.Size()
	}

	return info, nil
}

func inspect(r io.ReadSeeker) (*WavInfo, error) {
	dec := wav.NewDecoder(r)

	err := dec.FwdToPCM()
	if err != nil {
		return nil, fmt.Errorf("failed to find the data chunk: %w", err)
	}

	format := dec.Format()
	if format == nil || format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: missing fmt chunk", errNoAudio)
	}

	info := &WavInfo{
		Format:   format,
		BitDepth: int(dec.BitDepth),
	}

	frameSize := int64(format.NumChannels) * int64((dec.BitDepth+7)/8)
	if frameSize > 0 {
		info.Frames = int64(dec.PCMSize) / frameSize
	}

	info.Duration = framesDuration(info.Frames, format.SampleRate)

	return info, nil
}

// Duration returns the playing time of the file at path, or 0 if it can't
// be read.
func Duration(path string) time.Duration {
	info, err := Inspect(path)
	if err != nil {
		return 0
	}

	return info.Duration
}
