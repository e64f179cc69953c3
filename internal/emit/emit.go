// Package emit renders an index and hot map into one of the three external
// wire formats: ldas, pmdc, dcfs (C6).
package emit

import (
	"fmt"
	"io"

	"github.com/ligo-tools/frameidx/internal/model"
	"github.com/ligo-tools/frameidx/internal/segment"
)

// ExtensionSet is the accepted-extensions filter (-e/--extension).
type ExtensionSet map[string]bool

// NewExtensionSet builds an ExtensionSet from a flag list, defaulting to
// {"gwf"} if none were given.
func NewExtensionSet(extensions []string) ExtensionSet {
	if len(extensions) == 0 {
		extensions = []string{"gwf"}
	}
	set := make(ExtensionSet, len(extensions))
	for _, e := range extensions {
		set[e] = true
	}
	return set
}

// Row is one (directory, SFDE) contribution, flattened out of the index for
// rendering. It carries everything every protocol needs.
type Row struct {
	Dir       string
	Site      string
	FrameType string
	Duration  uint64
	Extension string
	MTime     int64
	NFiles    int
	Intervals []segment.Interval
}

// BuildRows flattens idx into rows, dropping any SFDE whose extension is
// not in extensions and any directory fragment with no matching SFDEs.
func BuildRows(idx model.Index, hot model.HotMap, extensions ExtensionSet) []Row {
	var rows []Row
	for dir, frag := range idx {
		for sfde, segs := range frag {
			if !extensions[sfde.Extension] {
				continue
			}
			rows = append(rows, Row{
				Dir:       dir,
				Site:      sfde.Site,
				FrameType: sfde.FrameType,
				Duration:  sfde.Duration,
				Extension: sfde.Extension,
				MTime:     hot[dir],
				NFiles:    segs.NumFiles(sfde.Duration),
				Intervals: segs.List(),
			})
		}
	}
	return rows
}

// Protocol names accepted by -p/--protocol.
const (
	LDAS = "ldas"
	PMDC = "pmdc"
	DCFS = "dcfs"
)

// Emit renders idx/hot in the named protocol to w.
func Emit(w io.Writer, protocol string, idx model.Index, hot model.HotMap, extensions ExtensionSet) error {
	rows := BuildRows(idx, hot, extensions)
	switch protocol {
	case LDAS:
		return RenderLDAS(w, rows)
	case PMDC:
		return RenderPMDC(w, rows)
	case DCFS:
		return RenderDCFS(w, rows)
	default:
		return fmt.Errorf("emit: unknown protocol %q", protocol)
	}
}
