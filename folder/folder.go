// Package folder holds the scan and destination handling shared by the
// batch commands.
package folder

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Resolve makes scan absolute and checks it is a directory. A relative dest
// is placed under the resolved scan folder.
func Resolve(scan, dest string) (string, string, error) {
	scanDir, err := filepath.Abs(scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return "", "", fmt.Errorf("invalid scan path %q: %w", scan, err)
	}

	if !filepath.IsAbs(dest) {
		dest = filepath.Join(scanDir, dest)
	}
	return scanDir, dest, nil
}

// Files creates dest and returns the names of the files directly in scan.
func Files(scan, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create destination folder %q: %w", dest, err)
	}

	entries, err := os.ReadDir(scan)
	if err != nil {
		return nil, fmt.Errorf("unable to read folder %q: %w", scan, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Report logs the totals of a batch under the done key and fails when any
// file failed.
func Report(done string, ok, failed uint64) error {
	slog.Info("stats", done, ok, "errors", failed, "total", ok+failed)

	if failed > 0 {
		return fmt.Errorf("error processing %d files", failed)
	}
	return nil
}
