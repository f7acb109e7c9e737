package ebc

import (
	"bytes"
	"io"
	"os"
	"slices"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/ebc/internal/ebctype"
)

// EmbeddedFile is one unit recovered from a container: its payload, its
// type, and the command lines that produced it.
//
// The payload is either a file on disk or an in-memory buffer, depending on
// which extraction produced it, and never changes after construction.
type EmbeddedFile struct {
	path      string
	data      []byte
	inMemory  bool
	fileType  FileType
	entryPath string
	commands  [ebctype.NumCommandSources][]string
}

// Path returns the on-disk location of the payload, or "" for in-memory files.
func (f *EmbeddedFile) Path() string {
	return f.path
}

// Data returns the in-memory payload, or nil for on-disk files.
// The returned slice must be treated as immutable.
func (f *EmbeddedFile) Data() []byte {
	return f.data
}

// InMemory reports whether the payload is held in memory.
func (f *EmbeddedFile) InMemory() bool {
	return f.inMemory
}

// FileType returns the type of the payload.
func (f *EmbeddedFile) FileType() FileType {
	return f.fileType
}

// EntryPath returns the archive entry the file was extracted from.
// It is empty for single-unit containers.
func (f *EmbeddedFile) EntryPath() string {
	return f.entryPath
}

// SetCommands replaces the command list recorded for src.
// A later call for the same source discards the earlier list.
func (f *EmbeddedFile) SetCommands(cmds []string, src CommandSource) {
	if !src.Valid() {
		return
	}
	f.commands[src] = slices.Clone(cmds)
}

// Commands returns the command list recorded for src.
func (f *EmbeddedFile) Commands(src CommandSource) []string {
	if !src.Valid() {
		return nil
	}
	return slices.Clone(f.commands[src])
}

// ClangCommands returns the Clang command list.
func (f *EmbeddedFile) ClangCommands() []string {
	return f.Commands(CommandSourceClang)
}

// SwiftCommands returns the Swift command list.
func (f *EmbeddedFile) SwiftCommands() []string {
	return f.Commands(CommandSourceSwift)
}

// Open returns a reader over the payload.
func (f *EmbeddedFile) Open() (io.ReadCloser, error) {
	if f.inMemory {
		return io.NopCloser(bytes.NewReader(f.data)), nil
	}
	return os.Open(f.path)
}

// Content returns the full payload, reading it from disk if needed.
func (f *EmbeddedFile) Content() ([]byte, error) {
	if f.inMemory {
		return f.data, nil
	}
	return os.ReadFile(f.path)
}

// Digest returns the sha256 digest of the payload.
func (f *EmbeddedFile) Digest() (digest.Digest, error) {
	r, err := f.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()
	return digest.Canonical.FromReader(r)
}

// Remove deletes an on-disk payload. It is a no-op for in-memory files and
// for payloads that were already removed.
func (f *EmbeddedFile) Remove() error {
	if f.inMemory || f.path == "" {
		return nil
	}
	return removeFile(f.path)
}
