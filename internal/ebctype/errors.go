package ebctype

import "errors"

// Sentinel errors shared by the codec and the public package.
var (
	// ErrChecksumMismatch is returned when entry content does not match its recorded checksum.
	ErrChecksumMismatch = errors.New("ebc: checksum verification failed")

	// ErrDecompression is returned when an archive entry cannot be decoded.
	ErrDecompression = errors.New("ebc: decompression failed")

	// ErrInvalidArchive is returned when a XAR header or table of contents is malformed.
	ErrInvalidArchive = errors.New("ebc: invalid archive")
)
