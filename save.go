package ebc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Save copies the payload to dest, creating parent directories as needed.
// dest is replaced in one rename, so it never holds a partial payload.
func (f *EmbeddedFile) Save(dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open payload: %w", err)
	}
	defer src.Close()

	if err := replaceFile(dest, src); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}

// replaceFile writes r to a hidden scratch file next to dest and renames it
// over dest. The scratch file is removed on failure.
func replaceFile(dest string, r io.Reader) (err error) {
	tmp, err := createUnique(filepath.Dir(dest), "."+scratchPrefix, ".part")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			removeFile(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
