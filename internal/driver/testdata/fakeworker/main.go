// Command fakeworker stands in for the real frameidx binary in driver
// tests: given NAMESPACE ROOT -i IPCPATH it writes a canned single-entry IPC
// payload keyed on ROOT. It exits nonzero if ROOT's basename is "fail", and
// sleeps well past any sensible test timeout before writing if ROOT's
// basename is "slow" — standing in for a sibling worker that is still
// scanning when another worker fails.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ligo-tools/frameidx/internal/ipc"
	"github.com/ligo-tools/frameidx/internal/model"
	"github.com/ligo-tools/frameidx/internal/segment"
)

func main() {
	if len(os.Args) < 5 || os.Args[3] != "-i" {
		fmt.Fprintln(os.Stderr, "fakeworker: usage: fakeworker NAMESPACE ROOT -i IPCPATH")
		os.Exit(2)
	}
	root := os.Args[2]
	ipcPath := os.Args[4]

	if filepath.Base(root) == "fail" {
		fmt.Fprintln(os.Stderr, "fakeworker: simulated failure for root", root)
		os.Exit(1)
	}

	if filepath.Base(root) == "slow" {
		time.Sleep(30 * time.Second)
	}

	seg := &segment.Segments{}
	seg.Add(segment.Interval{Start: 1000, End: 1016})
	frag := model.Fragment{
		{Site: "H", FrameType: "R", Duration: 16, Extension: "gwf"}: seg,
	}

	payload := ipc.Payload{
		Fragments: model.Index{root: frag},
		Hot:       model.HotMap{root: 1234},
	}
	if err := ipc.Write(ipcPath, payload); err != nil {
		fmt.Fprintln(os.Stderr, "fakeworker: writing payload:", err)
		os.Exit(1)
	}
}
