package xar

import (
	"bytes"
	"compress/bzip2"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/meigma/ebc/internal/ebctype"
)

// DefaultMaxEntrySize is the default limit on an entry's decoded size.
const DefaultMaxEntrySize = 1 << 30

// maxTOCSize bounds the uncompressed table of contents.
const maxTOCSize = 64 << 20

// Encoding styles recognized in entry data.
const (
	EncodingNone  = "application/octet-stream"
	EncodingGzip  = "application/x-gzip"
	EncodingBzip2 = "application/x-bzip2"
)

// Entry describes a regular file stored in the archive.
type Entry struct {
	// Path is the slash-separated path of the entry within the archive.
	Path string

	// ID is the TOC identifier of the entry.
	ID string

	// Offset is the position of the entry data relative to the heap start.
	Offset int64

	// Size is the number of bytes the entry occupies in the heap.
	Size int64

	// Length is the decoded size of the entry.
	Length int64

	// Encoding is the MIME style of the heap data.
	Encoding string

	// ArchivedChecksum covers the heap bytes, ExtractedChecksum the decoded bytes.
	ArchivedChecksum  Checksum
	ExtractedChecksum Checksum
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxEntrySize limits the decoded size of a single entry.
// Set limit to 0 to disable the limit.
func WithMaxEntrySize(limit int64) Option {
	return func(r *Reader) {
		r.maxEntrySize = limit
	}
}

// Reader provides access to the entries of a XAR archive.
type Reader struct {
	src          io.ReaderAt
	size         int64
	heapStart    int64
	toc          []byte
	entries      []Entry
	maxEntrySize int64
}

// NewReader parses the header and table of contents from src.
//
// The TOC checksum is verified when the archive records one. Entry paths
// that escape the archive root are rejected.
func NewReader(src io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	r := &Reader{
		src:          src,
		size:         size,
		maxEntrySize: DefaultMaxEntrySize,
	}
	for _, opt := range opts {
		opt(r)
	}

	h, style, err := readHeader(src, size)
	if err != nil {
		return nil, err
	}

	compressed := make([]byte, h.TOCCompressed)
	if _, err := src.ReadAt(compressed, int64(h.Size)); err != nil {
		return nil, fmt.Errorf("read toc: %w", err)
	}
	r.heapStart = int64(h.Size) + int64(h.TOCCompressed) //nolint:gosec // bounded by size in readHeader

	if h.TOCUncompressed > maxTOCSize {
		return nil, fmt.Errorf("%w: toc too large (%d bytes)", ebctype.ErrInvalidArchive, h.TOCUncompressed)
	}
	toc, err := inflate(compressed, int64(h.TOCUncompressed)) //nolint:gosec // bounded above
	if err != nil {
		return nil, fmt.Errorf("inflate toc: %w", err)
	}
	if int64(len(toc)) != int64(h.TOCUncompressed) { //nolint:gosec // bounded above
		return nil, fmt.Errorf("%w: toc length %d, header says %d", ebctype.ErrInvalidArchive, len(toc), h.TOCUncompressed)
	}
	r.toc = toc

	var doc xmlDoc
	if err := xml.Unmarshal(toc, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse toc: %v", ebctype.ErrInvalidArchive, err)
	}

	if err := r.verifyTOC(doc.TOC.Checksum, style, compressed); err != nil {
		return nil, err
	}

	entries, err := flatten(doc.TOC.Files, "", nil)
	if err != nil {
		return nil, err
	}
	r.entries = entries
	return r, nil
}

// maxDigestSize is the length of the largest supported digest (sha512).
const maxDigestSize = 64

// verifyTOC checks the compressed TOC against the checksum stored in the heap.
func (r *Reader) verifyTOC(ref *xmlHeapRef, style string, compressed []byte) error {
	if isNoneStyle(style) || ref == nil {
		return nil
	}
	heap := r.size - r.heapStart
	if ref.Offset < 0 || ref.Size <= 0 || ref.Size > maxDigestSize ||
		ref.Offset > heap || ref.Size > heap-ref.Offset {
		return fmt.Errorf("%w: toc checksum out of range", ebctype.ErrInvalidArchive)
	}
	stored := make([]byte, ref.Size)
	if _, err := r.src.ReadAt(stored, r.heapStart+ref.Offset); err != nil {
		return fmt.Errorf("read toc checksum: %w", err)
	}
	got, err := sum(style, compressed)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, fmt.Sprintf("%x", stored)) {
		return fmt.Errorf("toc: %w", ebctype.ErrChecksumMismatch)
	}
	return nil
}

// flatten walks the TOC tree depth-first and collects regular files.
func flatten(files []*xmlFile, parent string, out []Entry) ([]Entry, error) {
	for _, f := range files {
		p := joinPath(parent, f.Name)
		if !validEntryPath(p) {
			return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrInvalid}
		}
		switch f.Type {
		case "directory":
			var err error
			out, err = flatten(f.Files, p, out)
			if err != nil {
				return nil, err
			}
		case "file", "":
			e := Entry{Path: p, ID: f.ID}
			if f.Data != nil {
				e.Offset = f.Data.Offset
				e.Size = f.Data.Size
				e.Length = f.Data.Length
				e.Encoding = f.Data.Encoding.Style
				e.ArchivedChecksum = Checksum{Style: f.Data.ArchivedChecksum.Style, Digest: strings.TrimSpace(f.Data.ArchivedChecksum.Digest)}
				e.ExtractedChecksum = Checksum{Style: f.Data.ExtractedChecksum.Style, Digest: strings.TrimSpace(f.Data.ExtractedChecksum.Digest)}
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// TOC returns the uncompressed table of contents XML.
// The returned slice must be treated as immutable.
func (r *Reader) TOC() []byte {
	return r.toc
}

// Entries returns the regular files in TOC document order.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// Len returns the number of regular files in the archive.
func (r *Reader) Len() int {
	return len(r.entries)
}

// ReadEntry returns the decoded content of e, verifying both checksums.
func (r *Reader) ReadEntry(e *Entry) ([]byte, error) {
	if e.Size == 0 {
		return []byte{}, nil
	}
	heap := r.size - r.heapStart
	if e.Offset < 0 || e.Size < 0 || e.Offset > heap || e.Size > heap-e.Offset {
		return nil, &fs.PathError{Op: "read", Path: e.Path, Err: fmt.Errorf("%w: data out of range", ebctype.ErrInvalidArchive)}
	}
	if r.maxEntrySize > 0 && (e.Length > r.maxEntrySize || e.Size > r.maxEntrySize) {
		return nil, &fs.PathError{Op: "read", Path: e.Path, Err: ErrEntryTooLarge}
	}

	raw := make([]byte, e.Size)
	if _, err := r.src.ReadAt(raw, r.heapStart+e.Offset); err != nil && !errors.Is(err, io.EOF) {
		return nil, &fs.PathError{Op: "read", Path: e.Path, Err: err}
	}
	if err := verify(e.ArchivedChecksum, raw); err != nil {
		return nil, &fs.PathError{Op: "read", Path: e.Path, Err: err}
	}

	data, err := r.decode(e, raw)
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: e.Path, Err: err}
	}
	if err := verify(e.ExtractedChecksum, data); err != nil {
		return nil, &fs.PathError{Op: "read", Path: e.Path, Err: err}
	}
	return data, nil
}

func (r *Reader) decode(e *Entry, raw []byte) ([]byte, error) {
	switch e.Encoding {
	case "", EncodingNone:
		return raw, nil
	case EncodingGzip:
		return inflate(raw, r.limitFor(e))
	case EncodingBzip2:
		data, err := readLimited(bzip2.NewReader(bytes.NewReader(raw)), r.limitFor(e))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ebctype.ErrDecompression, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unsupported encoding %q", ebctype.ErrDecompression, e.Encoding)
	}
}

func (r *Reader) limitFor(e *Entry) int64 {
	if e.Length > 0 {
		return e.Length
	}
	return r.maxEntrySize
}

// inflate decompresses zlib data, reading at most limit bytes (0 = unlimited).
func inflate(data []byte, limit int64) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ebctype.ErrDecompression, err)
	}
	defer zr.Close()
	out, err := readLimited(zr, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ebctype.ErrDecompression, err)
	}
	return out, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, ErrEntryTooLarge
	}
	return out, nil
}

// File is a Reader backed by an open file.
type File struct {
	*Reader
	f *os.File
}

// Open opens the archive at path.
// The returned File must be closed to release the file handle.
func Open(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // caller-provided path is intentional
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	r, err := NewReader(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{Reader: r, f: f}, nil
}

// Close releases the underlying file handle.
func (f *File) Close() error {
	return f.f.Close()
}
