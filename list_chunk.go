package wavmeta

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// See http://bwfmetaedit.sourceforge.net/listinfo.html
	markerIART    = [4]byte{'I', 'A', 'R', 'T'}
	markerISFT    = [4]byte{'I', 'S', 'F', 'T'}
	markerICRD    = [4]byte{'I', 'C', 'R', 'D'}
	markerICOP    = [4]byte{'I', 'C', 'O', 'P'}
	markerIARL    = [4]byte{'I', 'A', 'R', 'L'}
	markerINAM    = [4]byte{'I', 'N', 'A', 'M'}
	markerIENG    = [4]byte{'I', 'E', 'N', 'G'}
	markerIGNR    = [4]byte{'I', 'G', 'N', 'R'}
	markerIPRD    = [4]byte{'I', 'P', 'R', 'D'}
	markerISRC    = [4]byte{'I', 'S', 'R', 'C'}
	markerISBJ    = [4]byte{'I', 'S', 'B', 'J'}
	markerICMT    = [4]byte{'I', 'C', 'M', 'T'}
	markerITRK    = [4]byte{'I', 'T', 'R', 'K'}
	markerITRKBug = [4]byte{'i', 't', 'r', 'k'}
	markerITCH    = [4]byte{'I', 'T', 'C', 'H'}
	markerIKEY    = [4]byte{'I', 'K', 'E', 'Y'}
	markerIMED    = [4]byte{'I', 'M', 'E', 'D'}

	errListTooShort = errors.New("LIST chunk too short")
	errListNotInfo  = errors.New("LIST chunk is not an INFO list")
)

// infoNames maps INFO markers to readable names. Unlisted markers are kept
// under their four character code.
var infoNames = map[[4]byte]string{
	markerIARL:    "Location",
	markerIART:    "Artist",
	markerISFT:    "Software",
	markerICRD:    "CreationDate",
	markerICOP:    "Copyright",
	markerINAM:    "Title",
	markerIENG:    "Engineer",
	markerIGNR:    "Genre",
	markerIPRD:    "Product",
	markerISRC:    "Source",
	markerISBJ:    "Subject",
	markerICMT:    "Comments",
	markerITRK:    "TrackNbr",
	markerITRKBug: "TrackNbr",
	markerITCH:    "Technician",
	markerIKEY:    "Keywords",
	markerIMED:    "Medium",
}

// DecodeInfoList decodes the body of a LIST/INFO chunk into a map keyed by
// readable field name. Recorders such as AudioMoth put their device id and
// settings in the Comments field.
func DecodeInfoList(body []byte) (map[string]string, error) {
	if len(body) < 4 {
		return nil, errListTooShort
	}

	if [4]byte(body[:4]) != CIDInfo {
		return nil, fmt.Errorf("%w: %q", errListNotInfo, body[:4])
	}

	info := make(map[string]string)

	offset := 4
	// a lone word alignment byte may trail the last entry
	for len(body)-offset > 1 {
		if len(body)-offset < chunkHeaderLen {
			return info, fmt.Errorf("read sub header at offset %d: %w", offset, ErrTruncatedChunk)
		}

		id := [4]byte(body[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(body[offset+4 : offset+8]))
		offset += chunkHeaderLen

		if size > len(body)-offset {
			return info, fmt.Errorf("read sub header %q data: %w", id[:], ErrTruncatedChunk)
		}

		value := trimPadding(nullTermStr(body[offset : offset+size]))

		name, ok := infoNames[id]
		if !ok {
			name = string(id[:])
		}

		info[name] = value

		offset += size + size%2
	}

	return info, nil
}
