package ebc

import "github.com/meigma/ebc/internal/ebctype"

// Re-export types from internal/ebctype for public API.
type (
	// FileType identifies the kind of payload carried by an embedded file.
	FileType = ebctype.FileType

	// CommandSource labels which compiler recorded a command line.
	CommandSource = ebctype.CommandSource
)

// Re-export file type constants.
const (
	FileTypeUnknown = ebctype.FileTypeUnknown
	FileTypeBitcode = ebctype.FileTypeBitcode
	FileTypeObject  = ebctype.FileTypeObject
	FileTypeExports = ebctype.FileTypeExports
	FileTypeLTO     = ebctype.FileTypeLTO
	FileTypeBundle  = ebctype.FileTypeBundle
)

// Re-export command source constants.
const (
	CommandSourceClang = ebctype.CommandSourceClang
	CommandSourceSwift = ebctype.CommandSourceSwift
)

// DetectFileType inspects the leading bytes of data.
var DetectFileType = ebctype.DetectFileType

// ParseFileType maps a metadata file-type name to a FileType.
var ParseFileType = ebctype.ParseFileType
