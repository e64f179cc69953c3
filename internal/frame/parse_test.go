package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Valid(t *testing.T) {
	n, err := Parse("H-R-1000000000-16.gwf")
	require.NoError(t, err)
	assert.Equal(t, Name{Site: "H", FrameType: "R", GPSStart: 1000000000, Duration: 16, Extension: "gwf"}, n)

	start, end := n.Interval()
	assert.Equal(t, uint64(1000000000), start)
	assert.Equal(t, uint64(1000000016), end)
}

func TestParse_Invalid(t *testing.T) {
	cases := []string{
		"",
		"H-R-1000000000.gwf",           // only 3 dash-separated fields
		"H-R-X-1000000000-16.gwf",      // too many
		"-R-1000000000-16.gwf",         // empty site
		"H--1000000000-16.gwf",         // empty frametype
		"H-R--16.gwf",                  // empty start
		"H-R-1000000000-.gwf",          // empty duration
		"H-R-1000000000-16.gwf.extra",  // extension contains dot
		"H-R-1000000000-16.",           // empty extension
		"H-R-1000000000-16",            // no extension
		"H-R--1000000000-16.gwf",       // leading garbage via sign
		"H-R-1000000000-+16.gwf",       // sign on duration
		"H-R-1e9-16.gwf",               // not digits
		"H-R-1000000000- 16.gwf",       // whitespace
	}
	for _, name := range cases {
		_, err := Parse(name)
		assert.ErrorIsf(t, err, ErrNotAFrameFile, "name=%q", name)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	names := []Name{
		{Site: "H", FrameType: "R", GPSStart: 0, Duration: 1, Extension: "gwf"},
		{Site: "L1", FrameType: "HOFT", GPSStart: 123456789, Duration: 4096, Extension: "lcf"},
	}
	for _, n := range names {
		got, err := Parse(Format(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}

func TestParse_SentinelIsComparable(t *testing.T) {
	_, err := Parse("bad")
	if !errors.Is(err, ErrNotAFrameFile) {
		t.Fatalf("expected ErrNotAFrameFile, got %v", err)
	}
}
