package wavmeta

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// stampLayout is the suffix recorders append to file names.
	stampLayout = "20060102_150405.wav"
	// tableDateLayout is MM/DD/YY.
	tableDateLayout = "01/02/06"
	// minStationYear drops recordings made before the recorder clock was set.
	minStationYear = 2017
)

// StationTableHeader is the first row written by WriteStationTable.
var StationTableHeader = []string{"Station ID", "Valid wavs", "Earliest", "Latest", "Serial number"}

// FindWavs returns every file under root with a .wav extension, in any case,
// sorted by path.
func FindWavs(root string) ([]string, error) {
	var wavs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".wav") {
			wavs = append(wavs, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", root, err)
	}

	slices.Sort(wavs)

	return wavs, nil
}

// StationID builds the "<area hex>-<station>" id from the two directories
// holding path, e.g. ".../10234/Stn_A/x.wav" gives "10234-A".
func StationID(path string) string {
	dir := filepath.Dir(path)
	stnDir := filepath.Base(dir)
	hexDir := filepath.Base(filepath.Dir(dir))

	parts := strings.Split(stnDir, "_")

	return hexDir + "-" + parts[len(parts)-1]
}

// Timestamp returns the recording time encoded in the file name as
// YYYYMMDD_HHMMSS.wav, or the file's modification time when the name has
// none.
func Timestamp(path string) (time.Time, error) {
	parts := strings.Split(filepath.Base(path), "_")
	if len(parts) >= 2 {
		stamp := strings.Join(parts[len(parts)-2:], "_")

		t, err := time.ParseInLocation(stampLayout, stamp, time.Local)
		if err == nil {
			return t, nil
		}
	}

	stat, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat file: %w", err)
	}

	return stat.ModTime(), nil
}

// Station aggregates the recordings of one station.
type Station struct {
	ID      string
	Wavs    int
	Dates   []time.Time
	Serials []string
}

// Span returns the earliest and latest recording dates from 2017 onward.
// ok is false when there are none.
func (s Station) Span() (first, last time.Time, ok bool) {
	for _, d := range s.Dates {
		if d.Year() < minStationYear {
			continue
		}

		if !ok || d.Before(first) {
			first = d
		}

		if !ok || d.After(last) {
			last = d
		}

		ok = true
	}

	return first, last, ok
}

// SerialList returns the distinct serial numbers joined with '+'.
func (s Station) SerialList() string {
	serials := slices.Clone(s.Serials)
	slices.Sort(serials)

	return strings.Join(slices.Compact(serials), "+")
}

// BuildStations groups the valid wav files under root by station and
// resolves their serial numbers with r. Stations are sorted by id.
func BuildStations(ctx context.Context, root string, r *Resolver) ([]Station, error) {
	if r == nil {
		r = NewResolver()
	}

	wavs, err := FindWavs(root)
	if err != nil {
		return nil, err
	}

	valid := make([]string, 0, len(wavs))

	for _, path := range wavs {
		if err := CheckWav(path); err != nil {
			r.log().Debug("skipping invalid wav", "path", path, "error", err)
			continue
		}

		valid = append(valid, path)
	}

	resolutions, err := r.ResolveMany(ctx, valid...)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)

	var stations []Station

	for _, res := range resolutions {
		id := StationID(res.Path)

		i, ok := index[id]
		if !ok {
			i = len(stations)
			index[id] = i
			stations = append(stations, Station{ID: id})
		}

		stn := &stations[i]
		stn.Wavs++
		stn.Serials = append(stn.Serials, res.Serial)

		stamp, err := Timestamp(res.Path)
		if err != nil {
			r.log().Warn("no timestamp", "path", res.Path, "error", err)
			continue
		}

		stn.Dates = append(stn.Dates, stamp)
	}

	slices.SortFunc(stations, func(a, b Station) int {
		return strings.Compare(a.ID, b.ID)
	})

	return stations, nil
}

// WriteStationTable writes one CSV row per station under
// StationTableHeader. A station without dates from 2017 onward gets empty
// Earliest and Latest columns.
func WriteStationTable(w io.Writer, stations []Station) error {
	cw := csv.NewWriter(w)

	err := cw.Write(StationTableHeader)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, stn := range stations {
		var earliest, latest string

		if first, last, ok := stn.Span(); ok {
			earliest = first.Format(tableDateLayout)
			latest = last.Format(tableDateLayout)
		}

		row := []string{stn.ID, strconv.Itoa(stn.Wavs), earliest, latest, stn.SerialList()}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write station %q: %w", stn.ID, err)
		}
	}

	cw.Flush()

	return cw.Error()
}
