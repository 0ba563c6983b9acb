// Package resourcedir verifies the resource directory contract of
// spec.md §6: it must contain a `verify` file whose first
// whitespace-delimited token equals a fixed literal.
package resourcedir

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// VerifyToken is the literal byte sequence spec.md §6 requires as the
// first token of <rsc>/verify.
const VerifyToken = "4c3f666590eeb398f4606555d3756350"

// Verify checks that dir contains a verify file whose first token matches
// VerifyToken. A mismatch or missing file is a FatalInit condition per
// spec.md §7.
func Verify(dir string) error {
	path := filepath.Join(dir, "verify")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("resourcedir: opening %q: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Split(bufio.ScanWords)
	if !sc.Scan() {
		return fmt.Errorf("resourcedir: %q is empty", path)
	}

	if sc.Text() != VerifyToken {
		return fmt.Errorf("resourcedir: %q does not contain the expected verification token", path)
	}

	return nil
}

// CacheDir returns the sibling cache directory spec.md §6 names:
// <rsc>/../cache/.
func CacheDir(rscDir string) string {
	return filepath.Join(rscDir, "..", "cache")
}
