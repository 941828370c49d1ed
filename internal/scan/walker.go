// Package scan discovers downloaded volumes on disk and maps them onto the
// mirrored output tree for conversion.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
)

// Walk recursively enumerates all regular files under root, marking files
// whose basename carries invalidSuffix as not valid for processing. Symlinks
// and directories are skipped. The order is WalkDir's lexical order, which is
// deterministic for a given tree; callers must not rely on anything more.
func Walk(root, invalidSuffix string) ([]domain.LocalFile, error) {
	var files []domain.LocalFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, domain.LocalFile{
			Path:  path,
			Valid: !domain.MarkedInvalid(d.Name(), invalidSuffix),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// MapTree computes the mirrored output path for every valid file, creating
// each output directory as it goes. A directory that cannot be created is
// fatal for the call: nothing can be placed in that branch.
func MapTree(inputRoot, outputRoot string, files []domain.LocalFile, outSuffix string) ([]domain.MirroredPath, error) {
	pairs := make([]domain.MirroredPath, 0, len(files))
	for _, f := range files {
		if !f.Valid {
			continue
		}
		mp, err := domain.MapOutput(inputRoot, outputRoot, f.Path, outSuffix)
		if err != nil {
			return nil, err
		}
		if err := EnsureDir(filepath.Dir(mp.Output)); err != nil {
			return nil, err
		}
		pairs = append(pairs, mp)
	}
	return pairs, nil
}

// EnsureDir creates dir and any missing parents. Creating an existing
// directory is a no-op, and concurrent workers racing on the same path are
// safe: MkdirAll never fails on an already-existing directory.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
