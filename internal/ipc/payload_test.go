package ipc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligo-tools/frameidx/internal/model"
	"github.com/ligo-tools/frameidx/internal/segment"
)

func TestPayload_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worker.ipc")

	seg := &segment.Segments{}
	seg.Add(segment.Interval{Start: 10, End: 20})
	key := model.SFDE{Site: "H", FrameType: "R", Duration: 10, Extension: "gwf"}

	want := Payload{
		Fragments: model.Index{"/a": model.Fragment{key: seg}},
		Hot:       model.HotMap{"/a": 123},
	}

	require.NoError(t, Write(path, want))

	got, err := Read(path)
	require.NoError(t, err)

	require.Contains(t, got.Fragments, "/a")
	gotSeg := got.Fragments["/a"][key]
	require.NotNil(t, gotSeg)
	assert.Equal(t, seg.List(), gotSeg.List())
	assert.Equal(t, int64(123), got.Hot["/a"])
}

func TestPayload_KeysetMatchesDcAndHot(t *testing.T) {
	// The spec requires hot's keyset to correspond exactly to dc's keyset.
	fragments := model.Index{
		"/a": model.Fragment{},
		"/b": model.Fragment{{Site: "H", FrameType: "R", Duration: 1, Extension: "gwf"}: &segment.Segments{}},
	}
	hot := model.HotMap{"/a": 1, "/b": 2}

	for dir := range fragments {
		_, ok := hot[dir]
		assert.True(t, ok, "hot must contain every directory present in dc")
	}
	for dir := range hot {
		_, ok := fragments[dir]
		assert.True(t, ok, "hot must not contain directories absent from dc")
	}
}
