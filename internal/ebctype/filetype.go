package ebctype

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// FileType identifies the kind of payload carried by an embedded file.
type FileType uint8

const (
	FileTypeUnknown FileType = iota
	FileTypeBitcode
	FileTypeObject
	FileTypeExports
	FileTypeLTO
	FileTypeBundle
)

// String returns the name used for the file type in archive metadata.
func (t FileType) String() string {
	switch t {
	case FileTypeBitcode:
		return "Bitcode"
	case FileTypeObject:
		return "Object"
	case FileTypeExports:
		return "Exports"
	case FileTypeLTO:
		return "LTO"
	case FileTypeBundle:
		return "Bundle"
	default:
		return "Unknown"
	}
}

// Extension returns a file extension suitable for the payload, including the dot.
func (t FileType) Extension() string {
	switch t {
	case FileTypeBitcode, FileTypeLTO:
		return ".bc"
	case FileTypeObject:
		return ".o"
	case FileTypeExports:
		return ".exports"
	case FileTypeBundle:
		return ".xar"
	default:
		return ".bin"
	}
}

// Known reports whether t is one of the modeled file types.
func (t FileType) Known() bool {
	return t > FileTypeUnknown && t <= FileTypeBundle
}

// IsBitcode reports whether the payload carries LLVM bitcode.
func (t FileType) IsBitcode() bool {
	return t == FileTypeBitcode || t == FileTypeLTO
}

// ParseFileType maps a metadata file-type string to a FileType.
// Matching is case-insensitive; unrecognized names map to FileTypeUnknown.
func ParseFileType(s string) FileType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bitcode":
		return FileTypeBitcode
	case "object":
		return FileTypeObject
	case "exports":
		return FileTypeExports
	case "lto":
		return FileTypeLTO
	case "bundle":
		return FileTypeBundle
	default:
		return FileTypeUnknown
	}
}

// Magic numbers recognized by DetectFileType.
var (
	MagicBitcode = []byte{'B', 'C', 0xC0, 0xDE}
	MagicXAR     = []byte{'x', 'a', 'r', '!'}
)

const (
	magicBitcodeWrapper = 0x0B17C0DE
	magicMachO32        = 0xFEEDFACE
	magicMachO64        = 0xFEEDFACF
)

// DetectFileType inspects the leading bytes of data.
//
// Raw bitcode and the bitcode wrapper header map to FileTypeBitcode, a XAR
// header to FileTypeBundle and a Mach-O header (either endianness) to
// FileTypeObject. Everything else is FileTypeUnknown.
func DetectFileType(data []byte) FileType {
	if len(data) < 4 {
		return FileTypeUnknown
	}
	switch {
	case bytes.HasPrefix(data, MagicBitcode):
		return FileTypeBitcode
	case bytes.HasPrefix(data, MagicXAR):
		return FileTypeBundle
	}
	le := binary.LittleEndian.Uint32(data)
	be := binary.BigEndian.Uint32(data)
	switch {
	case le == magicBitcodeWrapper:
		return FileTypeBitcode
	case le == magicMachO32, le == magicMachO64, be == magicMachO32, be == magicMachO64:
		return FileTypeObject
	}
	return FileTypeUnknown
}
