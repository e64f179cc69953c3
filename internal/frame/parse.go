// Package frame decodes frame filenames of the form
// SITE-FRAMETYPE-GPSSTART-DURATION.EXTENSION.
package frame

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNotAFrameFile is returned by Parse when name does not match the frame
// naming convention. Callers must treat it as "skip this file", not as a
// failure worth logging.
var ErrNotAFrameFile = errors.New("frame: name does not match SITE-FT-START-DUR.EXT")

// Name is the decomposition of a frame filename.
type Name struct {
	Site      string
	FrameType string
	GPSStart  uint64
	Duration  uint64
	Extension string
}

// Interval returns the half-open GPS interval [start, start+duration) this
// name covers.
func (n Name) Interval() (start, end uint64) {
	return n.GPSStart, n.GPSStart + n.Duration
}

// Parse decomposes name into its site, frametype, gpsstart, duration and
// extension. It fails with ErrNotAFrameFile for anything not matching the
// grammar; no other error is ever returned.
func Parse(name string) (Name, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 4 {
		return Name{}, ErrNotAFrameFile
	}
	site, ft, startStr, rest := parts[0], parts[1], parts[2], parts[3]
	if site == "" || ft == "" {
		return Name{}, ErrNotAFrameFile
	}

	durExt := strings.SplitN(rest, ".", 2)
	if len(durExt) != 2 {
		return Name{}, ErrNotAFrameFile
	}
	durStr, ext := durExt[0], durExt[1]
	if ext == "" || strings.Contains(ext, ".") {
		return Name{}, ErrNotAFrameFile
	}

	start, err := parseNonNegativeInt(startStr)
	if err != nil {
		return Name{}, ErrNotAFrameFile
	}
	dur, err := parseNonNegativeInt(durStr)
	if err != nil {
		return Name{}, ErrNotAFrameFile
	}

	return Name{
		Site:      site,
		FrameType: ft,
		GPSStart:  start,
		Duration:  dur,
		Extension: ext,
	}, nil
}

// Format renders n back into its canonical filename, the inverse of Parse
// for any Name satisfying the grammar.
func Format(n Name) string {
	return n.Site + "-" + n.FrameType + "-" +
		strconv.FormatUint(n.GPSStart, 10) + "-" +
		strconv.FormatUint(n.Duration, 10) + "." + n.Extension
}

// parseNonNegativeInt accepts only non-empty ASCII digit strings: no sign,
// no whitespace, no leading garbage.
func parseNonNegativeInt(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 64)
}
