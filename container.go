package ebc

import (
	"fmt"
	"log/slog"
	"os"
)

// Container is an embedded bitcode blob.
//
// The only implementations are *Archive and *Bitcode.
type Container interface {
	// Data returns the raw container bytes.
	Data() []byte

	// IsEmpty reports whether the container holds no bytes.
	IsEmpty() bool

	// IsArchive reports whether the container is a multi-entry archive.
	IsArchive() bool

	// Prefix returns the name prefix that scopes extracted entries.
	Prefix() string

	// EmbeddedFiles returns the container's units with on-disk payloads.
	// The payload files belong to the caller.
	EmbeddedFiles() []*EmbeddedFile

	// RawEmbeddedFiles returns the container's units with in-memory payloads.
	RawEmbeddedFiles() []*EmbeddedFile

	sealed()
}

// Interface compliance.
var (
	_ Container = (*Archive)(nil)
	_ Container = (*Bitcode)(nil)
)

// FromBytes returns the container variant matching data's signature: an
// *Archive for XAR bundles and a *Bitcode for everything else, including
// empty input. It never fails.
//
// The data slice is retained; callers must not modify it afterwards.
func FromBytes(data []byte, opts ...Option) Container {
	if DetectFileType(data) == FileTypeBundle {
		return NewArchive(data, opts...)
	}
	return NewBitcode(data, opts...)
}

// FromFile reads path and returns the matching container variant.
// It fails only when path is empty or cannot be read.
func FromFile(path string, opts ...Option) (Container, error) {
	data, err := readContainer(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(data, opts...), nil
}

// ArchiveFromFile reads path as an archive regardless of its signature.
func ArchiveFromFile(path string, opts ...Option) (*Archive, error) {
	data, err := readContainer(path)
	if err != nil {
		return nil, err
	}
	return NewArchive(data, opts...), nil
}

func readContainer(path string) ([]byte, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	data, err := os.ReadFile(path) //nolint:gosec // caller-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}
	return data, nil
}

// container holds the state shared by both variants.
type container struct {
	data []byte
	cfg  config
}

func newContainer(data []byte, opts []Option) container {
	return container{data: data, cfg: newConfig(opts)}
}

// Data returns the raw container bytes.
func (c *container) Data() []byte {
	return c.data
}

// IsEmpty reports whether the container holds no bytes.
func (c *container) IsEmpty() bool {
	return len(c.data) == 0
}

// Prefix returns the name prefix that scopes extracted entries.
func (c *container) Prefix() string {
	return c.cfg.prefix
}

func (c *container) sealed() {}

// log returns the logger, falling back to a discard logger if nil.
func (c *container) log() *slog.Logger {
	if c.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.cfg.logger
}
