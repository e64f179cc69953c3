package emit

import (
	"encoding/gob"
	"io"

	"github.com/ligo-tools/frameidx/internal/segment"
)

// ftSiteKey and siteKey are comparable struct keys for the second and
// third dcfs records.
type ftSiteKey struct {
	Extension string
	FrameType string
}

type siteKey struct {
	Extension string
	FrameType string
	Site      string
}

// DirEntry is one (directory, duration, intervals) tuple in the third dcfs
// record.
type DirEntry struct {
	Dir       string
	Duration  uint64
	Intervals []segment.Interval
}

// RenderDCFS writes rows as three sequential, self-describing gob records:
// ext -> {frametype}, (ext,frametype) -> {site}, (ext,frametype,site) ->
// [(dir,dur,intervals)].
func RenderDCFS(w io.Writer, rows []Row) error {
	extToFT := map[string]map[string]bool{}
	ftToSite := map[ftSiteKey]map[string]bool{}
	siteToEntries := map[siteKey][]DirEntry{}

	for _, r := range rows {
		if extToFT[r.Extension] == nil {
			extToFT[r.Extension] = map[string]bool{}
		}
		extToFT[r.Extension][r.FrameType] = true

		fk := ftSiteKey{Extension: r.Extension, FrameType: r.FrameType}
		if ftToSite[fk] == nil {
			ftToSite[fk] = map[string]bool{}
		}
		ftToSite[fk][r.Site] = true

		sk := siteKey{Extension: r.Extension, FrameType: r.FrameType, Site: r.Site}
		siteToEntries[sk] = append(siteToEntries[sk], DirEntry{
			Dir:       r.Dir,
			Duration:  r.Duration,
			Intervals: r.Intervals,
		})
	}

	enc := gob.NewEncoder(w)
	if err := enc.Encode(extToFT); err != nil {
		return err
	}
	if err := enc.Encode(ftToSite); err != nil {
		return err
	}
	if err := enc.Encode(siteToEntries); err != nil {
		return err
	}
	return nil
}

// ReadDCFS reads the three records RenderDCFS wrote, in order. Used by
// peers and by tests to round-trip a rendered file.
func ReadDCFS(r io.Reader) (extToFT map[string]map[string]bool, ftToSite map[ftSiteKey]map[string]bool, siteToEntries map[siteKey][]DirEntry, err error) {
	dec := gob.NewDecoder(r)
	if err = dec.Decode(&extToFT); err != nil {
		return
	}
	if err = dec.Decode(&ftToSite); err != nil {
		return
	}
	if err = dec.Decode(&siteToEntries); err != nil {
		return
	}
	return
}
