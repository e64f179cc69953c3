package emit

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ligo-tools/frameidx/internal/segment"
)

// RenderLDAS writes rows in the ldas protocol: one line per (directory,
// SFDE), `DIR,SITE,FT,1,DUR MTIME NFILES {s0 e0 s1 e1 ...}`, lines sorted
// lexicographically, trailing newline after the last line.
func RenderLDAS(w io.Writer, rows []Row) error {
	return renderSortedLines(w, rows, func(r Row) string {
		return fmt.Sprintf("%s,%s,%s,1,%d %d %d %s",
			r.Dir, r.Site, r.FrameType, r.Duration, r.MTime, r.NFiles, braceList(r.Intervals))
	})
}

// RenderPMDC writes rows in the pmdc protocol: identical to ldas except the
// key field preserves the extension: `DIR,SITE,FT,x,DUR,EXT`.
func RenderPMDC(w io.Writer, rows []Row) error {
	return renderSortedLines(w, rows, func(r Row) string {
		return fmt.Sprintf("%s,%s,%s,x,%d,%s %d %d %s",
			r.Dir, r.Site, r.FrameType, r.Duration, r.Extension, r.MTime, r.NFiles, braceList(r.Intervals))
	})
}

func renderSortedLines(w io.Writer, rows []Row, format func(Row) string) error {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, format(r))
	}
	sort.Strings(lines)

	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// braceList renders an interval list as "{s0 e0 s1 e1 ...}".
func braceList(intervals []segment.Interval) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, iv := range intervals {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.FormatUint(iv.Start, 10))
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(iv.End, 10))
	}
	b.WriteByte('}')
	return b.String()
}
