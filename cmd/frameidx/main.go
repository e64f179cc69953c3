// Command frameidx is the entry point (C7): flag parsing, master/worker mode
// dispatch, lifecycle wiring of the scan engine, cache, parallel driver and
// emitter, and the process exit code convention.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ligo-tools/frameidx/internal/emit"
	"github.com/ligo-tools/frameidx/internal/logger"
)

// boolFlags names every flag that takes no argument. The command line is
// `prog NAMESPACE [DIR...] [options]`, so options can trail the positional
// arguments; the stdlib flag package stops scanning at the first
// non-flag token, so splitArgs partitions raw args into flag tokens and
// positional tokens before handing the former to a flag.FlagSet.
var boolFlags = map[string]bool{
	"-s": true, "--status": true,
	"--log-pretty": true,
}

func splitArgs(args []string) (flagArgs, positional []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flagArgs = append(flagArgs, a)
		if !boolFlags[a] && !strings.Contains(a, "=") && i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	return flagArgs, positional
}

// exit codes, per the error handling design: 0 on success, nonzero on lock
// conflict, missing namespace, worker failure, or I/O error.
const (
	exitOK           = 0
	exitUsage        = 2
	exitLockConflict = 3
	exitWorkerFail   = 4
	exitIOError      = 5
)

// extensionList accumulates repeated -e/--extension flags.
type extensionList []string

func (e *extensionList) String() string { return fmt.Sprint([]string(*e)) }
func (e *extensionList) Set(v string) error {
	*e = append(*e, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("frameidx", flag.ContinueOnError)

	var extensions extensionList
	fs.Var(&extensions, "e", "accept files with this extension (no dot), repeatable")
	fs.Var(&extensions, "extension", "alias of -e")
	output := fs.String("o", "-", "where the emitted format goes (path or - for stdout)")
	fs.StringVar(output, "output", "-", "alias of -o")
	modeStr := fs.String("m", "0644", "mode applied to atomically-published files (octal)")
	fs.StringVar(modeStr, "output-file-mode", "0644", "alias of -m")
	ipcFile := fs.String("i", "", "worker mode: write IPC payload here instead of mutating the persistent cache")
	fs.StringVar(ipcFile, "ipc-file", "", "alias of -i")
	protocol := fs.String("p", "", "emit in this protocol: ldas, pmdc, dcfs; omit for no emission")
	fs.StringVar(protocol, "protocol", "", "alias of -p")
	concurrency := fs.Int("r", 5, "max live workers")
	fs.IntVar(concurrency, "concurrency", 5, "alias of -r")
	tempdir := fs.String("t", "", "parent for the scratch directory (default: system temp)")
	fs.StringVar(tempdir, "tempdir", "", "alias of -t")
	status := fs.Bool("s", false, "print header and exit 0")
	fs.BoolVar(status, "status", false, "alias of -s")
	pretty := fs.Bool("log-pretty", false, "render logs as console text instead of JSON")

	flagArgs, positional := splitArgs(args)
	if err := fs.Parse(flagArgs); err != nil {
		return exitUsage
	}

	logger.Init(os.Stderr, *pretty)
	log := logger.L

	mode, err := parseMode(*modeStr)
	if err != nil {
		log.Error().Err(err).Msg("bad -m/--output-file-mode")
		return exitUsage
	}

	if len(positional) == 0 {
		fmt.Fprintln(os.Stderr, "usage: frameidx NAMESPACE [DIR...] [options]")
		return exitUsage
	}
	namespace := positional[0]
	roots := positional[1:]

	if *ipcFile != "" {
		if len(roots) != 1 {
			log.Error().Msg("-i/--ipc-file requires exactly one directory argument")
			return exitUsage
		}
		return runWorker(namespace, roots[0], *ipcFile, &log)
	}

	if err := checkRootsDisjoint(roots); err != nil {
		log.Error().Err(err).Msg("bad root arguments")
		return exitUsage
	}

	return runMaster(masterConfig{
		namespace:   namespace,
		roots:       roots,
		extensions:  emit.NewExtensionSet(extensions),
		output:      *output,
		mode:        mode,
		protocol:    *protocol,
		concurrency: *concurrency,
		tempdir:     *tempdir,
		status:      *status,
	}, &log)
}

func parseMode(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return os.FileMode(v), nil
}

// checkRootsDisjoint rejects the case where one supplied root is a path
// prefix of another, per the root-overlap open question (see DESIGN.md):
// this implementation chooses to reject at parse time rather than define a
// "last worker wins" tiebreak.
func checkRootsDisjoint(roots []string) error {
	clean := make([]string, len(roots))
	for i, r := range roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return fmt.Errorf("resolving root %q: %w", r, err)
		}
		clean[i] = abs
	}
	for i := 0; i < len(clean); i++ {
		for j := 0; j < len(clean); j++ {
			if i == j {
				continue
			}
			if clean[i] == clean[j] {
				return fmt.Errorf("duplicate root %q", clean[i])
			}
			rel, err := filepath.Rel(clean[i], clean[j])
			if err == nil && rel != ".." && !hasDotDotPrefix(rel) {
				return fmt.Errorf("root %q contains root %q", clean[i], clean[j])
			}
		}
	}
	return nil
}

func hasDotDotPrefix(rel string) bool {
	return rel == ".." || len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
