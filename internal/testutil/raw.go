package testutil

import (
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// Header checksum algorithm identifiers accepted by RawArchive.
const (
	ChecksumNone uint32 = 0
	ChecksumSHA1 uint32 = 1
)

// RawArchive assembles a XAR archive from a literal TOC and heap. The header
// is well formed; nothing in toc or heap is validated or checksummed.
func RawArchive(tb testing.TB, checksumAlg uint32, toc string, heap []byte) []byte {
	tb.Helper()

	body := []byte(xml.Header + toc)
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(body); err != nil {
		tb.Fatalf("compress toc: %v", err)
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("compress toc: %v", err)
	}

	var buf bytes.Buffer
	hdr := struct {
		Magic           uint32
		Size            uint16
		Version         uint16
		TOCCompressed   uint64
		TOCUncompressed uint64
		ChecksumAlg     uint32
	}{
		Magic:           0x78617221,
		Size:            28,
		Version:         1,
		TOCCompressed:   uint64(compressed.Len()),
		TOCUncompressed: uint64(len(body)),
		ChecksumAlg:     checksumAlg,
	}
	if err := binary.Write(&buf, binary.BigEndian, hdr); err != nil {
		tb.Fatalf("encode header: %v", err)
	}
	buf.Write(compressed.Bytes())
	buf.Write(heap)
	return buf.Bytes()
}
