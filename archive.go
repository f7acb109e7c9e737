package ebc

import (
	"os"

	"github.com/meigma/ebc/metadata"
)

// Archive is a multi-entry container stored as a XAR bundle.
//
// The table of contents is decoded once, at construction, into a
// metadata.Metadata that supplies each entry's type and command lines.
type Archive struct {
	container
	meta *metadata.Metadata
}

// NewArchive creates an Archive over data and loads its metadata.
//
// NewArchive never fails. When the codec cannot produce a table of
// contents the metadata is empty and every entry is reported with an
// unknown type.
func NewArchive(data []byte, opts ...Option) *Archive {
	a := &Archive{container: newContainer(data, opts)}
	a.meta = metadata.Parse(a.metadataXML())
	return a
}

// IsArchive reports true.
func (a *Archive) IsArchive() bool {
	return true
}

// Metadata returns the parsed table of contents.
func (a *Archive) Metadata() *metadata.Metadata {
	return a.meta
}

// metadataXML asks the codec for the table of contents. The archive and
// XML scratch files are removed before returning.
func (a *Archive) metadataXML() []byte {
	if a.IsEmpty() {
		return nil
	}
	var doc []byte
	err := withScratchFile(a.cfg.tempDir, ".xar", a.data, func(archivePath string) error {
		return withScratchFile(a.cfg.tempDir, ".xml", nil, func(xmlPath string) error {
			if !a.cfg.codec.WriteTOC(archivePath, xmlPath) {
				a.log().Warn("archive has no usable table of contents", "prefix", a.Prefix())
				return nil
			}
			b, err := os.ReadFile(xmlPath) //nolint:gosec // scratch path is generated
			if err != nil {
				return err
			}
			doc = b
			return nil
		})
	})
	if err != nil {
		a.log().Warn("load archive metadata", "prefix", a.Prefix(), "error", err)
		return nil
	}
	return doc
}

// EmbeddedFiles extracts every modeled entry to its own temporary file.
//
// Entries are returned in archive order. Entries whose type is not modeled
// are skipped and their extracted files removed. Failures are logged and
// yield an empty result; the scratch copy of the archive is always removed.
func (a *Archive) EmbeddedFiles() []*EmbeddedFile {
	if a.IsEmpty() {
		return nil
	}
	var files []*EmbeddedFile
	err := withScratchFile(a.cfg.tempDir, ".xar", a.data, func(archivePath string) error {
		extracted, err := a.cfg.codec.ExtractToDisk(archivePath, a.Prefix())
		if err != nil {
			return err
		}
		for _, x := range extracted {
			f := NewEmbeddedFileFromPath(x.File, a.meta.FileType(x.Path))
			if f == nil {
				a.skip(x.Path)
				removeFile(x.File)
				continue
			}
			files = append(files, a.attach(f, x.Path))
		}
		return nil
	})
	if err != nil {
		a.log().Warn("extract archive", "prefix", a.Prefix(), "error", err)
		return nil
	}
	a.log().Debug("extracted archive", "prefix", a.Prefix(), "file_count", len(files))
	return files
}

// RawEmbeddedFiles decodes every modeled entry into memory.
//
// Ordering, skipping and failure handling match EmbeddedFiles.
func (a *Archive) RawEmbeddedFiles() []*EmbeddedFile {
	if a.IsEmpty() {
		return nil
	}
	var files []*EmbeddedFile
	err := withScratchFile(a.cfg.tempDir, ".xar", a.data, func(archivePath string) error {
		buffers, err := a.cfg.codec.ExtractToMemory(archivePath)
		if err != nil {
			return err
		}
		for _, b := range buffers {
			f := NewEmbeddedFileFromBuffer(b.Data, a.meta.FileType(b.Path))
			if f == nil {
				a.skip(b.Path)
				continue
			}
			files = append(files, a.attach(f, b.Path))
		}
		return nil
	})
	if err != nil {
		a.log().Warn("extract archive", "prefix", a.Prefix(), "error", err)
		return nil
	}
	return files
}

// attach records the entry path and both command lists on f.
func (a *Archive) attach(f *EmbeddedFile, path string) *EmbeddedFile {
	f.entryPath = path
	f.SetCommands(a.meta.ClangCommands(path), CommandSourceClang)
	f.SetCommands(a.meta.SwiftCommands(path), CommandSourceSwift)
	return f
}

func (a *Archive) skip(path string) {
	a.log().Debug("skipping entry of unmodeled type", "prefix", a.Prefix(), "path", path)
}
