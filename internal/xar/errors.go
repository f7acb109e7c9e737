package xar

import (
	"errors"

	"github.com/meigma/ebc/internal/ebctype"
)

// Sentinel errors re-exported from internal/ebctype.
var (
	ErrChecksumMismatch = ebctype.ErrChecksumMismatch
	ErrDecompression    = ebctype.ErrDecompression
	ErrInvalidArchive   = ebctype.ErrInvalidArchive
)

// ErrEntryTooLarge is returned when an entry exceeds the configured size limit.
var ErrEntryTooLarge = errors.New("xar: entry too large")
