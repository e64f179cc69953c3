package driver

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ligo-tools/frameidx/internal/cleanup"
)

var fakeWorkerBin string

// TestMain builds the fakeworker helper once, into a scratch directory
// shared by every test in this package, standing in for the real frameidx
// binary Run() would normally re-invoke.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "frameidx-driver-test-")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	fakeWorkerBin = filepath.Join(dir, "fakeworker")
	build := exec.Command("go", "build", "-o", fakeWorkerBin, "./testdata/fakeworker")
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		panic("building fakeworker: " + err.Error())
	}

	os.Exit(m.Run())
}

func TestDriver_AggregatesAllRoots(t *testing.T) {
	scratch := t.TempDir()
	b := cleanup.New(nil, "", nil)

	payload, err := Run(Config{
		BinaryPath:    fakeWorkerBin,
		NamespacePath: filepath.Join(t.TempDir(), "ns"),
		Roots:         []string{"/roots/a", "/roots/b", "/roots/c"},
		ScratchDir:    scratch,
		Concurrency:   2,
		Bundle:        b,
	})
	require.NoError(t, err)

	assert.Len(t, payload.Fragments, 3)
	assert.Len(t, payload.Hot, 3)
	for _, root := range []string{"/roots/a", "/roots/b", "/roots/c"} {
		assert.Contains(t, payload.Fragments, root)
		assert.Equal(t, int64(1234), payload.Hot[root])
	}
}

func TestDriver_AbortsOnWorkerFailure(t *testing.T) {
	scratch := t.TempDir()
	b := cleanup.New(nil, "", nil)

	_, err := Run(Config{
		BinaryPath:    fakeWorkerBin,
		NamespacePath: filepath.Join(t.TempDir(), "ns"),
		Roots:         []string{"/roots/a", "/roots/fail", "/roots/c"},
		ScratchDir:    scratch,
		Concurrency:   3,
		Bundle:        b,
	})
	assert.Error(t, err)
}

// TestDriver_KillsSurvivingWorkerImmediatelyOnFailure proves that a sibling
// worker still scanning when another root fails is hard-killed the instant
// the failure is observed, not left running to its own completion. The
// "slow" root sleeps 30s before writing its IPC payload, so the only way
// this test finishes quickly and the payload never appears on disk is if
// Run's failure branch actually kills it mid-sleep.
func TestDriver_KillsSurvivingWorkerImmediatelyOnFailure(t *testing.T) {
	scratch := t.TempDir()
	b := cleanup.New(nil, "", nil)

	slowIPCPath := filepath.Join(scratch, "worker-1.ipc")

	start := time.Now()
	_, err := Run(Config{
		BinaryPath:    fakeWorkerBin,
		NamespacePath: filepath.Join(t.TempDir(), "ns"),
		Roots:         []string{"/roots/fail", "/roots/slow"},
		ScratchDir:    scratch,
		Concurrency:   2,
		Bundle:        b,
	})
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.Lessf(t, elapsed, 10*time.Second,
		"Run took %s; the slow sibling should have been killed, not left to sleep out its 30s", elapsed)

	_, statErr := os.Stat(slowIPCPath)
	assert.Truef(t, os.IsNotExist(statErr),
		"slow worker's IPC file exists at %s; it should have been killed before writing", slowIPCPath)
}

func TestDriver_RespectsConcurrencyCapWithSingleWorker(t *testing.T) {
	scratch := t.TempDir()
	b := cleanup.New(nil, "", nil)

	payload, err := Run(Config{
		BinaryPath:    fakeWorkerBin,
		NamespacePath: filepath.Join(t.TempDir(), "ns"),
		Roots:         []string{"/roots/a", "/roots/b", "/roots/c", "/roots/d"},
		ScratchDir:    scratch,
		Concurrency:   1,
		Bundle:        b,
	})
	require.NoError(t, err)
	assert.Len(t, payload.Fragments, 4)
}
