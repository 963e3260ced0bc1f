package wavmeta

import (
	"math"
	"strings"
	"time"
)

// SerialUnknown is returned by the resolver when no source yields a serial.
const SerialUnknown = "NA"

var (
	// CIDWamd is the chunk ID of the Wildlife Acoustics metadata chunk.
	CIDWamd = [4]byte{'w', 'a', 'm', 'd'}
	// CIDGuano is the chunk ID of the GUANO metadata chunk.
	CIDGuano = [4]byte{'g', 'u', 'a', 'n'}
	// CIDList is the chunk ID for a LIST chunk.
	CIDList = [4]byte{'L', 'I', 'S', 'T'}
	// CIDInfo is the list type of an INFO LIST chunk.
	CIDInfo = [4]byte{'I', 'N', 'F', 'O'}
)

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}

// trimPadding drops the NUL and whitespace padding recorders leave at the end
// of text chunks.
func trimPadding(s string) string {
	return strings.TrimRight(s, "\x00 \t\r\n")
}

func framesDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 || frames <= 0 {
		return 0
	}

	return time.Duration(math.Round(float64(frames) / float64(sampleRate) * float64(time.Second)))
}
