package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/ligo-tools/frameidx/internal/cache"
	"github.com/ligo-tools/frameidx/internal/cleanup"
	"github.com/ligo-tools/frameidx/internal/driver"
	"github.com/ligo-tools/frameidx/internal/emit"
	"github.com/ligo-tools/frameidx/internal/model"
	"github.com/ligo-tools/frameidx/internal/scan"
)

// masterConfig collects the parsed flags the master needs.
type masterConfig struct {
	namespace   string
	roots       []string
	extensions  emit.ExtensionSet
	output      string
	mode        os.FileMode
	protocol    string
	concurrency int
	tempdir     string
	status      bool
}

// runMaster is the master side of the pipeline: open the cache under its
// single-writer lock, run C3 inline or fan out C5 across roots, persist the
// result through C4, and optionally emit via C6.
func runMaster(cfg masterConfig, log *zerolog.Logger) int {
	c, err := cache.Open(cfg.namespace, cfg.mode)
	if err != nil {
		if errors.Is(err, cache.ErrLockConflict) {
			log.Error().Err(err).Msg("lock conflict")
			return exitLockConflict
		}
		log.Error().Err(err).Msg("opening cache")
		return exitIOError
	}
	defer c.Close()

	if cfg.status {
		h := c.Header()
		fmt.Printf("version=%s initial_run=%v last_run_unix=%d\n", h.Version, h.InitialRun, h.LastRunUnix)
		fmt.Printf("last_scan=%s last_write=%s last_close=%s\n", h.LastScanDuration, h.LastWriteDuration, h.LastCloseDuration)
		fmt.Printf("directory_count=%d namespace_bytes=%d index_store_bytes=%d\n", h.DirectoryCount, h.NamespaceBytes, h.IndexStoreBytes)
		return exitOK
	}

	var scratchDir string
	if len(cfg.roots) > 1 {
		base := cfg.tempdir
		if base == "" {
			base = os.TempDir()
		}
		scratchDir, err = os.MkdirTemp(base, "frameidx-")
		if err != nil {
			log.Error().Err(err).Msg("creating scratch directory")
			return exitIOError
		}
	}

	bundle := cleanup.New(c.Lock(), scratchDir, log)
	bundle.InstallSignalHandler()
	defer bundle.Release()

	scanStart := time.Now()

	if len(cfg.roots) <= 1 {
		delta := model.Index{}
		engine := scan.New(scan.OSFS{}, delta, c.Hot(), log)
		if len(cfg.roots) == 1 {
			engine.Scan(cfg.roots[0])
		}
		if err := c.WriteFragments(delta); err != nil {
			log.Error().Err(err).Msg("writing fragments")
			return exitIOError
		}
		log.Info().
			Int("visited", engine.Stats.Visited).
			Int("pruned", engine.Stats.Pruned).
			Int("parsed", engine.Stats.Parsed).
			Int("skipped", engine.Stats.Skipped).
			Int("errors", engine.Stats.Errors).
			Msg("master: inline scan complete")
	} else {
		exe, err := os.Executable()
		if err != nil {
			log.Error().Err(err).Msg("resolving own executable path")
			return exitIOError
		}
		aggregate, err := driver.Run(driver.Config{
			BinaryPath:    exe,
			NamespacePath: cfg.namespace,
			Roots:         cfg.roots,
			ScratchDir:    scratchDir,
			Concurrency:   cfg.concurrency,
			Bundle:        bundle,
			Log:           log,
		})
		if err != nil {
			log.Error().Err(err).Msg("worker failure, aggregation aborted")
			return exitWorkerFail
		}
		if err := c.WriteFragments(aggregate.Fragments); err != nil {
			log.Error().Err(err).Msg("writing fragments")
			return exitIOError
		}
		c.MergeHot(aggregate.Hot)
	}

	scanDur := time.Since(scanStart)

	writeStart := time.Now()
	idx, err := c.LoadIndex()
	if err != nil {
		log.Error().Err(err).Msg("loading index for emission")
		return exitIOError
	}

	if cfg.protocol != "" {
		if err := emitOutput(cfg, idx, c.Hot()); err != nil {
			log.Error().Err(err).Msg("emitting output")
			return exitIOError
		}
	}
	writeDur := time.Since(writeStart)

	if err := c.Save(scanDur, writeDur, len(idx)); err != nil {
		log.Error().Err(err).Msg("saving namespace")
		return exitIOError
	}

	return exitOK
}

func emitOutput(cfg masterConfig, idx model.Index, hot model.HotMap) error {
	if cfg.output == "-" {
		return emit.Emit(os.Stdout, cfg.protocol, idx, hot, cfg.extensions)
	}
	return cache.AtomicWrite(cfg.output, cfg.mode, func(w io.Writer) error {
		return emit.Emit(w, cfg.protocol, idx, hot, cfg.extensions)
	})
}
