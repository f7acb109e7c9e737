package ebc

import "slices"

// Bitcode is a single-unit container: the blob is itself the payload.
type Bitcode struct {
	container
}

// NewBitcode creates a single-unit container over data.
func NewBitcode(data []byte, opts ...Option) *Bitcode {
	return &Bitcode{container: newContainer(data, opts)}
}

// IsArchive reports false.
func (b *Bitcode) IsArchive() bool {
	return false
}

// FileType returns the payload type detected from its leading bytes.
func (b *Bitcode) FileType() FileType {
	return DetectFileType(b.data)
}

// Commands returns the command line recorded with WithCommands.
func (b *Bitcode) Commands() []string {
	return slices.Clone(b.cfg.commands)
}

// EmbeddedFiles writes the payload to a new temporary file and returns it
// as the container's only unit. Unrecognized payloads yield no units.
func (b *Bitcode) EmbeddedFiles() []*EmbeddedFile {
	if b.IsEmpty() {
		return nil
	}
	ft := b.FileType()
	if !ft.Known() {
		b.log().Debug("payload type not recognized", "prefix", b.Prefix())
		return nil
	}
	path, err := writeUnique(b.cfg.tempDir, b.Prefix()+"_", ft.Extension(), b.data)
	if err != nil {
		b.log().Warn("write payload", "prefix", b.Prefix(), "error", err)
		return nil
	}
	f := NewEmbeddedFileFromPath(path, ft)
	f.SetCommands(b.cfg.commands, CommandSourceClang)
	return []*EmbeddedFile{f}
}

// RawEmbeddedFiles returns the payload in memory as the container's only
// unit. Unrecognized payloads yield no units.
func (b *Bitcode) RawEmbeddedFiles() []*EmbeddedFile {
	if b.IsEmpty() {
		return nil
	}
	f := NewEmbeddedFileFromBuffer(b.data, b.FileType())
	if f == nil {
		b.log().Debug("payload type not recognized", "prefix", b.Prefix())
		return nil
	}
	f.SetCommands(b.cfg.commands, CommandSourceClang)
	return []*EmbeddedFile{f}
}
