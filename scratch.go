package ebc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/ebc/internal/ident"
)

// scratchPrefix names every intermediate file the pipeline creates.
const scratchPrefix = "ebc-"

// createUnique creates dir/<prefix><TOKEN><suffix> exclusively.
// An empty dir means os.TempDir().
func createUnique(dir, prefix, suffix string) (*os.File, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	tok, err := ident.Generate()
	if err != nil {
		return nil, err
	}
	name := filepath.Join(dir, prefix+tok.String()+suffix)
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // name is generated
}

// writeUnique writes data to a new uniquely named file and returns its path.
// The file is removed again if writing fails.
func writeUnique(dir, prefix, suffix string, data []byte) (string, error) {
	f, err := createUnique(dir, prefix, suffix)
	if err != nil {
		return "", err
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		removeFile(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		removeFile(path)
		return "", err
	}
	return path, nil
}

// withScratchFile writes data to a fresh scratch file, runs fn with its
// path and removes the file before returning, whatever fn does.
func withScratchFile(dir, ext string, data []byte, fn func(path string) error) error {
	path, err := writeUnique(dir, scratchPrefix, ext, data)
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	defer removeFile(path)
	return fn(path)
}

// removeFile deletes path. A missing file is not an error.
func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
