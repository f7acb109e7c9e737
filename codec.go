package ebc

import (
	"log/slog"
	"os"
	"strings"

	"github.com/meigma/ebc/internal/xar"
)

// ExtractedFile is an archive entry materialized on disk.
type ExtractedFile struct {
	// Path is the entry path inside the archive.
	Path string

	// File is the location of the extracted content.
	File string
}

// ExtractedBuffer is an archive entry decoded into memory.
type ExtractedBuffer struct {
	// Path is the entry path inside the archive.
	Path string

	// Data is the decoded content.
	Data []byte
}

// Codec decodes archives stored on disk.
//
// Implementations enumerate entries in archive order. WriteTOC reports
// false when the archive has no usable table of contents; that is not
// treated as a failure by callers.
type Codec interface {
	ExtractToDisk(archivePath, prefix string) ([]ExtractedFile, error)
	ExtractToMemory(archivePath string) ([]ExtractedBuffer, error)
	WriteTOC(archivePath, xmlPath string) bool
}

// Interface compliance.
var _ Codec = (*XARCodec)(nil)

// XARCodec is the default Codec, backed by the built-in XAR reader.
type XARCodec struct {
	// TempDir receives extracted files. Empty means os.TempDir().
	TempDir string

	// MaxEntrySize limits the decoded size of one entry.
	// Zero uses the reader default; negative disables the limit.
	MaxEntrySize int64

	// Logger receives warnings about skipped entries. Nil discards them.
	Logger *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (c *XARCodec) log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *XARCodec) open(path string) (*xar.File, error) {
	var opts []xar.Option
	switch {
	case c.MaxEntrySize > 0:
		opts = append(opts, xar.WithMaxEntrySize(c.MaxEntrySize))
	case c.MaxEntrySize < 0:
		opts = append(opts, xar.WithMaxEntrySize(0))
	}
	return xar.Open(path, opts...)
}

// ExtractToDisk writes every readable entry to a new file named
// <prefix>_<TOKEN>_<entry> in TempDir. Entries that fail to decode are
// skipped and logged.
func (c *XARCodec) ExtractToDisk(archivePath, prefix string) ([]ExtractedFile, error) {
	f, err := c.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make([]ExtractedFile, 0, f.Len())
	for _, e := range f.Entries() {
		data, err := f.ReadEntry(&e)
		if err != nil {
			c.log().Warn("skipping unreadable entry", "path", e.Path, "error", err)
			continue
		}
		name, err := writeUnique(c.TempDir, prefix+"_", "_"+strings.ReplaceAll(e.Path, "/", "_"), data)
		if err != nil {
			for _, done := range out {
				removeFile(done.File)
			}
			return nil, err
		}
		out = append(out, ExtractedFile{Path: e.Path, File: name})
	}
	return out, nil
}

// ExtractToMemory decodes every readable entry. Entries that fail to
// decode are skipped and logged.
func (c *XARCodec) ExtractToMemory(archivePath string) ([]ExtractedBuffer, error) {
	f, err := c.open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make([]ExtractedBuffer, 0, f.Len())
	for _, e := range f.Entries() {
		data, err := f.ReadEntry(&e)
		if err != nil {
			c.log().Warn("skipping unreadable entry", "path", e.Path, "error", err)
			continue
		}
		out = append(out, ExtractedBuffer{Path: e.Path, Data: data})
	}
	return out, nil
}

// WriteTOC writes the uncompressed table of contents of the archive to xmlPath.
func (c *XARCodec) WriteTOC(archivePath, xmlPath string) bool {
	f, err := c.open(archivePath)
	if err != nil {
		c.log().Warn("read table of contents", "archive", archivePath, "error", err)
		return false
	}
	defer f.Close()

	if err := os.WriteFile(xmlPath, f.TOC(), 0o600); err != nil {
		c.log().Warn("write table of contents", "path", xmlPath, "error", err)
		return false
	}
	return true
}
