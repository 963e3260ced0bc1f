package wavmeta

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errGPSFormat = errors.New("unrecognized gps format")

// GPSFix is the first GPS waypoint a recorder logged.
type GPSFix struct {
	Datum     string
	Latitude  float64
	Longitude float64
	Altitude  int
}

func (g GPSFix) String() string {
	return fmt.Sprintf("%s %.6f,%.6f %dm", g.Datum, g.Latitude, g.Longitude, g.Altitude)
}

// ParseWamdGPS parses a gpsfirst value. Two layouts are in the wild:
//
//	WGS84, LAT, N|S, LON, E|W, ALT    (SM3, SM4)
//	WGS84, [-]LAT, [-]LON, ALT        (EMTouch)
//
// The altitude is rounded half to even.
func ParseWamdGPS(s string) (GPSFix, error) {
	parts := strings.Split(trimPadding(s), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) < 4 {
		return GPSFix{}, fmt.Errorf("%w: %d fields in %q", errGPSFormat, len(parts), s)
	}

	fix := GPSFix{Datum: parts[0]}
	vals := parts[1:]

	var latS, lonS, altS string

	standard := vals[1] == "N" || vals[1] == "S"
	if standard {
		if len(vals) < 5 {
			return GPSFix{}, fmt.Errorf("%w: %d fields in %q", errGPSFormat, len(parts), s)
		}

		latS, lonS, altS = vals[0], vals[2], vals[4]
	} else {
		latS, lonS, altS = vals[0], vals[1], vals[2]
	}

	var err error

	fix.Latitude, err = strconv.ParseFloat(latS, 64)
	if err != nil {
		return GPSFix{}, fmt.Errorf("failed to parse latitude: %w", err)
	}

	fix.Longitude, err = strconv.ParseFloat(lonS, 64)
	if err != nil {
		return GPSFix{}, fmt.Errorf("failed to parse longitude: %w", err)
	}

	alt, err := strconv.ParseFloat(altS, 64)
	if err != nil {
		return GPSFix{}, fmt.Errorf("failed to parse altitude: %w", err)
	}

	fix.Altitude = int(math.RoundToEven(alt))

	if standard && vals[1] == "S" {
		fix.Latitude = -fix.Latitude
	}

	if standard && vals[3] == "W" {
		fix.Longitude = -fix.Longitude
	}

	return fix, nil
}

func parseGPSBytes(raw []byte) (GPSFix, error) {
	text, degraded := decodeText(raw)
	if degraded {
		return GPSFix{}, fmt.Errorf("%w: invalid utf-8", errGPSFormat)
	}

	return ParseWamdGPS(text)
}
