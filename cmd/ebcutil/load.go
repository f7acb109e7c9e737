package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/meigma/ebc"
)

// loadContainers returns the bitcode containers in path.
//
// Object files yield one container per architecture slice carrying
// bitcode. Anything else is treated as a bare container (a XAR bundle or a
// single bitcode unit).
func loadContainers(path string, opts ...ebc.Option) ([]ebc.Container, error) {
	containers, err := ebc.Retrieve(path, opts...)
	if err == nil {
		return containers, nil
	}
	if !errors.Is(err, ebc.ErrUnsupportedFormat) {
		return nil, err
	}

	c, err := ebc.FromFile(path, append([]ebc.Option{ebc.WithPrefix(filepath.Base(path))}, opts...)...)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", path, ebc.ErrNoBitcode)
	}
	return []ebc.Container{c}, nil
}
