// Package cache implements the process-wide Dolph-Chebyshev coefficient
// store of spec.md §4.B, grounded on original_source/src/cache.cpp
// (init_cache, get_dolph_filename, save_dolph_window, load_dolph_window).
//
// Unlike the original's single static std::string root directory, this
// package guards its state with a sync.Mutex: nothing in Go stops two
// goroutines calling Init concurrently, even though the scope remains a
// single process-wide resource per spec.md §5.
package cache

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/digistring/digistring/internal/logging"
)

var (
	mu          sync.Mutex
	root        string
	initialized bool
)

// Init establishes the backing directory. It is idempotent: a second call
// logs a warning and no-ops. Fails if root already exists as a non-directory.
func Init(rootDir string) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		logging.Warning("cache: already initialized, ignoring re-init", "root", rootDir)
		return nil
	}

	info, err := os.Stat(rootDir)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("cache: init path %q exists and is not a directory", rootDir)
	case err == nil:
		// already a directory, fine
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(rootDir, 0o755); mkErr != nil {
			return fmt.Errorf("cache: creating directory %q: %w", rootDir, mkErr)
		}
	default:
		return fmt.Errorf("cache: stat %q: %w", rootDir, err)
	}

	root = rootDir
	initialized = true
	return nil
}

// Initialized reports whether Init has succeeded.
func Initialized() bool {
	mu.Lock()
	defer mu.Unlock()
	return initialized
}

// Filename returns the deterministic on-disk name for a given cache key,
// matching spec.md §6's "dolph_window_<size>_<attenuation.3dp>.txt".
func Filename(size int, attenuationDB float64) string {
	return fmt.Sprintf("dolph_window_%d_%s.txt", size, formatAttenuation(attenuationDB))
}

func formatAttenuation(attenuationDB float64) string {
	rounded := math.Round(attenuationDB*1000) / 1000
	return strconv.FormatFloat(rounded, 'f', 3, 64)
}

// Load returns the coefficients for (size, attenuationDB) if present. The
// attenuation is rounded to 3 decimal digits before keying, per spec.md §3.
func Load(size int, attenuationDB float64) ([]float64, bool) {
	mu.Lock()
	r := root
	ok := initialized
	mu.Unlock()

	if !ok {
		return nil, false
	}

	path := filepath.Join(r, Filename(size, attenuationDB))
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	coeffs := make([]float64, 0, size)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		v, perr := strconv.ParseFloat(sc.Text(), 64)
		if perr != nil {
			logging.Warning("cache: malformed coefficient line, discarding cached window", "path", path, "err", perr)
			return nil, false
		}
		coeffs = append(coeffs, v)
	}
	if sc.Err() != nil || len(coeffs) != size {
		return nil, false
	}

	return coeffs, true
}

// Save writes coefficients for (size, attenuationDB). Failures are
// non-fatal: a warning is logged and a subsequent Load simply misses.
func Save(size int, attenuationDB float64, coefficients []float64) {
	mu.Lock()
	r := root
	ok := initialized
	mu.Unlock()

	if !ok {
		return
	}

	path := filepath.Join(r, Filename(size, attenuationDB))
	f, err := os.Create(path)
	if err != nil {
		logging.Warning("cache: failed to write window coefficients", "path", path, "err", err)
		return
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, c := range coefficients {
		fmt.Fprintf(w, "%.17g\n", c)
	}
	if err := w.Flush(); err != nil {
		logging.Warning("cache: failed to flush window coefficients", "path", path, "err", err)
	}
}

// Reset clears the in-memory initialization state. Test-only helper.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = ""
	initialized = false
}
