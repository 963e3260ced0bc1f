package wavmeta

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ReviewTableHeader is the header row of a Kaleidoscope review table.
var ReviewTableHeader = []string{"FOLDER", "IN_FILE", "CHANNEL", "OFFSET", "DURATION", "PART", "VOCALIZATIONS", "MANUAL_ID"}

// ReviewClip is one segment of a recording listed for manual review.
// Offset and Length are in seconds.
type ReviewClip struct {
	Folder string
	File   string
	Offset float64
	Length float64
	Part   string
}

// ReviewClips cuts a recording of length seconds into clips of clipLength
// seconds, one starting every interval seconds. A trailing clip shorter than
// clipLength is left out. Parts are named part_<n> when clipLength equals
// interval and pos_<offset> otherwise.
func ReviewClips(folder, file string, length, clipLength, interval float64) []ReviewClip {
	if length <= 0 || clipLength <= 0 || interval <= 0 {
		return nil
	}

	partDigits := max(int(math.Log10(length/interval))+1, 1)
	posDigits := max(int(math.Log10(length))+1, 1)

	var clips []ReviewClip

	for i := 1; ; i++ {
		offset := float64(i-1) * interval

		dur := clipLength
		if offset+clipLength >= length {
			dur = length - offset
			if dur < clipLength {
				break
			}
		}

		part := fmt.Sprintf("pos_%0*d", posDigits, int(offset))
		if clipLength == interval {
			part = fmt.Sprintf("part_%0*d", partDigits, i)
		}

		clips = append(clips, ReviewClip{
			Folder: folder,
			File:   file,
			Offset: offset,
			Length: dur,
			Part:   part,
		})
	}

	return clips
}

// ReviewClipsOf lists the review clips of the wav file at path. Folder is
// the directory of path relative to root, empty for files directly in root.
// Unreadable files have no clips.
func ReviewClipsOf(path, root string, clipLength, interval float64) []ReviewClip {
	folder, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		folder = filepath.Dir(path)
	}

	if folder == "." {
		folder = ""
	}

	length := Duration(path).Seconds()

	return ReviewClips(filepath.ToSlash(folder), filepath.Base(path), length, clipLength, interval)
}

// BuildReview lists the review clips of every wav file under root, ordered
// by file name. Durations are read concurrently.
func BuildReview(ctx context.Context, root string, clipLength, interval float64) ([]ReviewClip, error) {
	wavs, err := FindWavs(root)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(wavs, func(a, b string) int {
		return strings.Compare(filepath.Base(a), filepath.Base(b))
	})

	perFile := make([][]ReviewClip, len(wavs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, path := range wavs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			perFile[i] = ReviewClipsOf(path, root, clipLength, interval)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.Concat(perFile...), nil
}

// WriteReviewTable writes clips as a review CSV with one vocalization per
// clip and an empty manual id.
func WriteReviewTable(w io.Writer, clips []ReviewClip) error {
	cw := csv.NewWriter(w)

	err := cw.Write(ReviewTableHeader)
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, clip := range clips {
		row := []string{
			clip.Folder,
			clip.File,
			"0",
			formatSeconds(clip.Offset),
			formatSeconds(clip.Length),
			clip.Part,
			"1",
			"",
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write clip %s %s: %w", clip.File, clip.Part, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
