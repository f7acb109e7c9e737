// Package metadata indexes the table of contents of a bitcode archive.
//
// A Metadata is built once from the TOC XML and answers lookups by entry
// path: the entry's file type and the Clang and Swift command lines that
// produced it. It also exposes the linker subdocument recorded alongside
// the TOC. Missing or malformed metadata never fails; lookups simply report
// nothing.
package metadata

import (
	"encoding/xml"
	"slices"
	"strings"

	"github.com/meigma/ebc/internal/ebctype"
	"github.com/meigma/ebc/internal/xar"
)

// Re-export types from internal/ebctype for public API.
type (
	// FileType identifies the kind of payload carried by an entry.
	FileType = ebctype.FileType

	// CommandSource labels which compiler recorded a command line.
	CommandSource = ebctype.CommandSource
)

// Re-export file type and command source constants.
const (
	FileTypeUnknown = ebctype.FileTypeUnknown
	FileTypeBitcode = ebctype.FileTypeBitcode
	FileTypeObject  = ebctype.FileTypeObject
	FileTypeExports = ebctype.FileTypeExports
	FileTypeLTO     = ebctype.FileTypeLTO
	FileTypeBundle  = ebctype.FileTypeBundle

	CommandSourceClang = ebctype.CommandSourceClang
	CommandSourceSwift = ebctype.CommandSourceSwift
)

// linkerSubdoc is the subdoc_name of the linker subdocument.
const linkerSubdoc = "Ld"

// Dylib is a dynamic library the linked image depends on.
type Dylib struct {
	Path string
	Weak bool
}

// Metadata is a read-only index over an archive's table of contents.
type Metadata struct {
	files map[string]*fileInfo
	paths []string
	ld    *xmlSubdoc
}

type fileInfo struct {
	fileType FileType
	commands [ebctype.NumCommandSources][]string
}

// Parse builds a Metadata from a TOC XML document.
//
// Parse never fails: an empty or malformed document yields a Metadata that
// reports FileTypeUnknown and no commands for every path.
func Parse(doc []byte) *Metadata {
	m := &Metadata{files: make(map[string]*fileInfo)}
	if len(doc) == 0 {
		return m
	}
	var x xmlDoc
	if err := xml.Unmarshal(doc, &x); err != nil {
		return m
	}
	for i := range x.Subdocs {
		if x.Subdocs[i].Name == linkerSubdoc {
			m.ld = &x.Subdocs[i]
			break
		}
	}
	m.index(x.TOC.Files, "")
	return m
}

// index records every file element under parent, depth-first.
func (m *Metadata) index(files []*xmlFile, parent string) {
	for _, f := range files {
		p := xar.NormalizePath(f.Name)
		if parent != "" {
			p = parent + "/" + p
		}
		if f.Type == "directory" {
			m.index(f.Files, p)
			continue
		}
		if _, dup := m.files[p]; dup {
			continue
		}
		info := &fileInfo{fileType: ebctype.ParseFileType(f.FileType)}
		info.commands[CommandSourceClang] = f.Clang
		info.commands[CommandSourceSwift] = f.Swift
		m.files[p] = info
		m.paths = append(m.paths, p)
	}
}

func (m *Metadata) lookup(path string) *fileInfo {
	if m == nil {
		return nil
	}
	return m.files[xar.NormalizePath(path)]
}

// Empty reports whether the document described no entries.
func (m *Metadata) Empty() bool {
	return m == nil || len(m.files) == 0
}

// Paths returns the entry paths recorded in the TOC, in document order.
func (m *Metadata) Paths() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.paths)
}

// FileType returns the recorded file type of the entry at path.
// Unknown paths report FileTypeUnknown.
func (m *Metadata) FileType(path string) FileType {
	info := m.lookup(path)
	if info == nil {
		return FileTypeUnknown
	}
	return info.fileType
}

// Commands returns the command line recorded for path under src.
// The result is nil when none was recorded.
func (m *Metadata) Commands(path string, src CommandSource) []string {
	info := m.lookup(path)
	if info == nil || !src.Valid() {
		return nil
	}
	return slices.Clone(info.commands[src])
}

// ClangCommands returns the Clang command line recorded for path.
func (m *Metadata) ClangCommands(path string) []string {
	return m.Commands(path, CommandSourceClang)
}

// SwiftCommands returns the Swift command line recorded for path.
func (m *Metadata) SwiftCommands(path string) []string {
	return m.Commands(path, CommandSourceSwift)
}

// HasLinkerInfo reports whether the document carried a linker subdocument.
func (m *Metadata) HasLinkerInfo() bool {
	return m != nil && m.ld != nil
}

// Version returns the linker subdocument version, or "" if absent.
func (m *Metadata) Version() string {
	if m == nil || m.ld == nil {
		return ""
	}
	return strings.TrimSpace(m.ld.Version)
}

// Architecture returns the target architecture recorded by the linker.
func (m *Metadata) Architecture() string {
	if m == nil || m.ld == nil {
		return ""
	}
	return strings.TrimSpace(m.ld.Architecture)
}

// Platform returns the target platform recorded by the linker.
func (m *Metadata) Platform() string {
	if m == nil || m.ld == nil {
		return ""
	}
	return strings.TrimSpace(m.ld.Platform)
}

// SDKVersion returns the SDK version recorded by the linker.
func (m *Metadata) SDKVersion() string {
	if m == nil || m.ld == nil {
		return ""
	}
	return strings.TrimSpace(m.ld.SDKVersion)
}

// HideSymbols reports whether the image was linked with symbols hidden.
func (m *Metadata) HideSymbols() bool {
	if m == nil || m.ld == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(m.ld.HideSymbols)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// LinkOptions returns the linker options in recorded order.
func (m *Metadata) LinkOptions() []string {
	if m == nil || m.ld == nil {
		return nil
	}
	return slices.Clone(m.ld.LinkOptions)
}

// Dylibs returns the linked dynamic libraries in recorded order.
func (m *Metadata) Dylibs() []Dylib {
	if m == nil || m.ld == nil {
		return nil
	}
	libs := make([]Dylib, 0, len(m.ld.Dylibs.Entries))
	for _, d := range m.ld.Dylibs.Entries {
		switch d.XMLName.Local {
		case "lib":
			libs = append(libs, Dylib{Path: strings.TrimSpace(d.Path)})
		case "weak":
			libs = append(libs, Dylib{Path: strings.TrimSpace(d.Path), Weak: true})
		}
	}
	return libs
}
