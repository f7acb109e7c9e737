package xar

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/meigma/ebc/internal/ebctype"
)

const (
	headerMagic   = 0x78617221 // "xar!"
	headerSize    = 28
	headerVersion = 1
)

// Checksum algorithm identifiers stored in the header.
const (
	checksumNone  uint32 = 0
	checksumSHA1  uint32 = 1
	checksumMD5   uint32 = 2
	checksumOther uint32 = 3
)

// header is the on-disk archive header.
type header struct {
	Magic           uint32
	Size            uint16
	Version         uint16
	TOCCompressed   uint64
	TOCUncompressed uint64
	ChecksumAlg     uint32
}

// readHeader parses the header at the start of src and returns it together
// with the name of the TOC checksum style.
func readHeader(src io.ReaderAt, size int64) (header, string, error) {
	var h header
	if size < headerSize {
		return h, "", fmt.Errorf("%w: file too small for header", ebctype.ErrInvalidArchive)
	}
	buf := make([]byte, headerSize)
	if _, err := src.ReadAt(buf, 0); err != nil {
		return h, "", fmt.Errorf("read header: %w", err)
	}
	if err := binary.Read(bytes.NewReader(buf), binary.BigEndian, &h); err != nil {
		return h, "", fmt.Errorf("decode header: %w", err)
	}
	if h.Magic != headerMagic {
		return h, "", fmt.Errorf("%w: bad magic %#x", ebctype.ErrInvalidArchive, h.Magic)
	}
	if h.Size < headerSize || int64(h.Size) > size {
		return h, "", fmt.Errorf("%w: bad header size %d", ebctype.ErrInvalidArchive, h.Size)
	}
	if h.Version != headerVersion {
		return h, "", fmt.Errorf("%w: unsupported version %d", ebctype.ErrInvalidArchive, h.Version)
	}
	if h.TOCCompressed == 0 || h.TOCCompressed > uint64(size)-uint64(h.Size) {
		return h, "", fmt.Errorf("%w: bad toc length %d", ebctype.ErrInvalidArchive, h.TOCCompressed)
	}

	var style string
	switch h.ChecksumAlg {
	case checksumNone:
		style = "none"
	case checksumSHA1:
		style = "sha1"
	case checksumMD5:
		style = "md5"
	case checksumOther:
		name := make([]byte, int(h.Size)-headerSize)
		if _, err := src.ReadAt(name, headerSize); err != nil {
			return h, "", fmt.Errorf("read checksum name: %w", err)
		}
		style = string(bytes.TrimRight(name, "\x00"))
	default:
		return h, "", fmt.Errorf("%w: unknown checksum algorithm %d", ebctype.ErrInvalidArchive, h.ChecksumAlg)
	}
	return h, style, nil
}

// encodeHeader serializes h, appending the checksum name for checksumOther.
func encodeHeader(h header, style string) []byte {
	var extra []byte
	if h.ChecksumAlg == checksumOther {
		extra = append([]byte(style), 0)
		for len(extra)%4 != 0 {
			extra = append(extra, 0)
		}
	}
	h.Size = uint16(headerSize + len(extra)) //nolint:gosec // checksum names are short
	var buf bytes.Buffer
	buf.Grow(int(h.Size))
	_ = binary.Write(&buf, binary.BigEndian, h) //nolint:errcheck // bytes.Buffer writes cannot fail
	buf.Write(extra)
	return buf.Bytes()
}

// checksumAlgFor returns the header identifier for a checksum style.
func checksumAlgFor(style string) uint32 {
	switch style {
	case "", "none":
		return checksumNone
	case "sha1":
		return checksumSHA1
	case "md5":
		return checksumMD5
	default:
		return checksumOther
	}
}
