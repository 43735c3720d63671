// Package bootstrap holds the start-up steps that run before the HTTP
// server: checking the front-end assets, binding a port and opening the
// dashboard in a browser.
package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
)

// MissingAssetsError lists required front-end files that are absent
type MissingAssetsError struct {
	Dir     string
	Missing []string
}

func (e *MissingAssetsError) Error() string {
	return "missing required files in " + e.Dir + ": " + strings.Join(e.Missing, ", ")
}

// CheckAssets verifies every name exists as a regular file under dir.
func CheckAssets(dir string, names []string) error {
	var missing []string
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingAssetsError{Dir: dir, Missing: missing}
	}
	return nil
}
