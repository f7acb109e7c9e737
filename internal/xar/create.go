package xar

import (
	"bytes"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// CreateEntry is a file to be written by Create.
type CreateEntry struct {
	// Name is the slash-separated path of the entry. Intermediate
	// directories are created as needed.
	Name string

	// Data is the decoded file content.
	Data []byte

	// Compress stores the data zlib-compressed (application/x-gzip).
	Compress bool

	// Properties is raw XML appended inside the entry's <file> element.
	Properties string
}

type createConfig struct {
	checksum string
	subdocs  []string
}

// CreateOption configures archive creation.
type CreateOption func(*createConfig)

// CreateWithChecksum sets the checksum style for the TOC and entries.
// The default is "sha1". Use "none" to omit checksums.
func CreateWithChecksum(style string) CreateOption {
	return func(cfg *createConfig) {
		cfg.checksum = strings.ToLower(style)
	}
}

// CreateWithSubdoc adds a raw XML subdocument ahead of the TOC.
func CreateWithSubdoc(raw string) CreateOption {
	return func(cfg *createConfig) {
		cfg.subdocs = append(cfg.subdocs, raw)
	}
}

// Create writes a XAR archive containing entries to w.
//
// Entries are stored in the order given; the TOC lists them in the same
// order, so readers enumerate them in that order.
func Create(w io.Writer, entries []CreateEntry, opts ...CreateOption) error {
	cfg := createConfig{checksum: "sha1"}
	for _, opt := range opts {
		opt(&cfg)
	}
	if _, err := newHash(cfg.checksum); err != nil {
		return err
	}

	c := &creator{cfg: cfg}

	// The heap starts with the TOC checksum, whose size depends only on the style.
	tocSumSize := 0
	if !isNoneStyle(cfg.checksum) {
		s, err := sum(cfg.checksum, nil)
		if err != nil {
			return err
		}
		tocSumSize = len(s) / 2
	}
	c.heap.Write(make([]byte, tocSumSize))

	for i := range entries {
		if err := c.add(&entries[i]); err != nil {
			return err
		}
	}

	doc := outDoc{
		Subdocs: strings.Join(cfg.subdocs, ""),
		TOC:     outTOC{Files: c.root},
	}
	if tocSumSize > 0 {
		doc.TOC.Checksum = &xmlHeapRef{Style: cfg.checksum, Offset: 0, Size: int64(tocSumSize)}
	}
	body, err := xml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal toc: %w", err)
	}
	toc := append([]byte(xml.Header), body...)

	compressed, err := deflate(toc)
	if err != nil {
		return fmt.Errorf("compress toc: %w", err)
	}

	heap := c.heap.Bytes()
	if tocSumSize > 0 {
		s, err := sum(cfg.checksum, compressed)
		if err != nil {
			return err
		}
		raw, err := hex.DecodeString(s)
		if err != nil {
			return err
		}
		copy(heap[:tocSumSize], raw)
	}

	hdr := encodeHeader(header{
		Magic:           headerMagic,
		Version:         headerVersion,
		TOCCompressed:   uint64(len(compressed)),
		TOCUncompressed: uint64(len(toc)),
		ChecksumAlg:     checksumAlgFor(cfg.checksum),
	}, cfg.checksum)

	for _, part := range [][]byte{hdr, compressed, heap} {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}
	return nil
}

// creator accumulates the heap and the TOC tree.
type creator struct {
	cfg    createConfig
	heap   bytes.Buffer
	root   []*outFile
	dirs   map[string]*outFile
	nextID int
}

func (c *creator) id() string {
	c.nextID++
	return strconv.Itoa(c.nextID)
}

// add appends e's data to the heap and links it into the TOC tree.
func (c *creator) add(e *CreateEntry) error {
	p := NormalizePath(e.Name)
	if !validEntryPath(p) {
		return fmt.Errorf("%w: invalid entry name %q", ErrInvalidArchive, e.Name)
	}

	stored := e.Data
	encoding := EncodingNone
	if e.Compress {
		var err error
		stored, err = deflate(e.Data)
		if err != nil {
			return fmt.Errorf("compress %s: %w", p, err)
		}
		encoding = EncodingGzip
	}

	data := &xmlData{
		Length:   int64(len(e.Data)),
		Offset:   int64(c.heap.Len()),
		Size:     int64(len(stored)),
		Encoding: xmlEncoding{Style: encoding},
	}
	if !isNoneStyle(c.cfg.checksum) {
		archived, err := sum(c.cfg.checksum, stored)
		if err != nil {
			return err
		}
		extracted, err := sum(c.cfg.checksum, e.Data)
		if err != nil {
			return err
		}
		data.ArchivedChecksum = xmlChecksum{Style: c.cfg.checksum, Digest: archived}
		data.ExtractedChecksum = xmlChecksum{Style: c.cfg.checksum, Digest: extracted}
	}
	c.heap.Write(stored)

	dir, name := "", p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		dir, name = p[:i], p[i+1:]
	}
	f := &outFile{
		ID:         c.id(),
		Name:       name,
		Type:       "file",
		Data:       data,
		Properties: e.Properties,
	}
	if dir == "" {
		c.root = append(c.root, f)
		return nil
	}
	parent := c.dir(dir)
	parent.Files = append(parent.Files, f)
	return nil
}

// dir returns the directory node for p, creating it and its parents.
func (c *creator) dir(p string) *outFile {
	if c.dirs == nil {
		c.dirs = make(map[string]*outFile)
	}
	if d, ok := c.dirs[p]; ok {
		return d
	}
	parentPath, name := "", p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		parentPath, name = p[:i], p[i+1:]
	}
	d := &outFile{ID: c.id(), Name: name, Type: "directory"}
	c.dirs[p] = d
	if parentPath == "" {
		c.root = append(c.root, d)
	} else {
		parent := c.dir(parentPath)
		parent.Files = append(parent.Files, d)
	}
	return d
}

// deflate zlib-compresses data.
func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
