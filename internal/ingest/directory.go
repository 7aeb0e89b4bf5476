// Package ingest discovers candidate documents on the local filesystem.
package ingest

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/minghan-wu/litdomain/constants"
)

// DirStats aggregates one directory walk.
type DirStats struct {
	Scanned int
	Matched int
}

// ScanDirectory walks root recursively and returns the absolute paths of
// ingestible files. Hidden files and directories are skipped when skipHidden
// is set.
func ScanDirectory(root string, skipHidden bool) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, errors.New("root path is required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, stats, err
	}

	var out []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if skipHidden && strings.HasPrefix(name, ".") && path != abs {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if constants.IsAllowedExt(filepath.Ext(name)) {
			stats.Matched++
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}
