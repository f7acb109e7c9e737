package ebc

import (
	"errors"

	"github.com/meigma/ebc/internal/ebctype"
	"github.com/meigma/ebc/internal/xar"
)

// Errors re-exported from internal packages.
var (
	// ErrChecksumMismatch is returned when entry content does not match its recorded checksum.
	ErrChecksumMismatch = ebctype.ErrChecksumMismatch

	// ErrDecompression is returned when an archive entry cannot be decoded.
	ErrDecompression = ebctype.ErrDecompression

	// ErrInvalidArchive is returned when a XAR header or table of contents is malformed.
	ErrInvalidArchive = ebctype.ErrInvalidArchive

	// ErrEntryTooLarge is returned when an archive entry exceeds the size limit.
	ErrEntryTooLarge = xar.ErrEntryTooLarge
)

// Sentinel errors specific to the ebc package.
var (
	// ErrEmptyPath is returned when a container is loaded from an empty path.
	ErrEmptyPath = errors.New("ebc: empty path")

	// ErrUnsupportedFormat is returned when a file is not a Mach-O or ELF object.
	ErrUnsupportedFormat = errors.New("ebc: unsupported object format")

	// ErrNoBitcode is returned when an object file carries no embedded bitcode.
	ErrNoBitcode = errors.New("ebc: no embedded bitcode")
)
