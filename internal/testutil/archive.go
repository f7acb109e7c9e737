// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"bytes"
	"encoding/xml"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/meigma/ebc/internal/xar"
)

// TestEntry describes one entry of a test bitcode bundle.
type TestEntry struct {
	Name     string
	Data     []byte
	FileType string // TOC <file-type>; empty omits the element
	Clang    []string
	Swift    []string
	Compress bool
}

// LinkerInfo populates the "Ld" subdocument of a test bundle.
type LinkerInfo struct {
	Version      string
	Architecture string
	Platform     string
	SDKVersion   string
	HideSymbols  bool
	LinkOptions  []string
	Dylibs       []string
	WeakDylibs   []string
}

// Bitcode returns a payload starting with the raw bitcode magic.
func Bitcode(body string) []byte {
	return append([]byte{'B', 'C', 0xC0, 0xDE}, body...)
}

// BuildTestArchive creates a XAR bitcode bundle from entries.
func BuildTestArchive(tb testing.TB, entries []TestEntry, opts ...xar.CreateOption) []byte {
	tb.Helper()
	return BuildTestArchiveWithLinker(tb, entries, nil, opts...)
}

// BuildTestArchiveWithLinker creates a XAR bitcode bundle with a linker
// subdocument. A nil ld omits the subdocument.
func BuildTestArchiveWithLinker(tb testing.TB, entries []TestEntry, ld *LinkerInfo, opts ...xar.CreateOption) []byte {
	tb.Helper()

	create := make([]xar.CreateEntry, 0, len(entries))
	for _, e := range entries {
		create = append(create, xar.CreateEntry{
			Name:       e.Name,
			Data:       e.Data,
			Compress:   e.Compress,
			Properties: entryProperties(e),
		})
	}
	if ld != nil {
		opts = append(slices.Clone(opts), xar.CreateWithSubdoc(linkerSubdoc(ld)))
	}

	var buf bytes.Buffer
	if err := xar.Create(&buf, create, opts...); err != nil {
		tb.Fatalf("create test archive: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to path, failing the test on error.
func WriteFile(tb testing.TB, path string, data []byte) string {
	tb.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ListDir returns the sorted names of the entries in dir.
func ListDir(tb testing.TB, dir string) []string {
	tb.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		tb.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

func entryProperties(e TestEntry) string {
	var b strings.Builder
	if e.FileType != "" {
		element(&b, "file-type", e.FileType)
	}
	commands(&b, "clang", e.Clang)
	commands(&b, "swift", e.Swift)
	return b.String()
}

func linkerSubdoc(ld *LinkerInfo) string {
	var b strings.Builder
	b.WriteString(`<subdoc subdoc_name="Ld">`)
	element(&b, "version", ld.Version)
	element(&b, "architecture", ld.Architecture)
	element(&b, "platform", ld.Platform)
	element(&b, "sdkversion", ld.SDKVersion)
	if ld.HideSymbols {
		element(&b, "hide-symbols", "1")
	}
	if len(ld.LinkOptions) > 0 {
		b.WriteString("<link-options>")
		for _, opt := range ld.LinkOptions {
			element(&b, "option", opt)
		}
		b.WriteString("</link-options>")
	}
	b.WriteString("<dylibs>")
	for _, lib := range ld.Dylibs {
		element(&b, "lib", lib)
	}
	for _, lib := range ld.WeakDylibs {
		element(&b, "weak", lib)
	}
	b.WriteString("</dylibs></subdoc>")
	return b.String()
}

func commands(b *strings.Builder, tag string, cmds []string) {
	if len(cmds) == 0 {
		return
	}
	b.WriteString("<" + tag + ">")
	for _, c := range cmds {
		element(b, "cmd", c)
	}
	b.WriteString("</" + tag + ">")
}

func element(b *strings.Builder, tag, text string) {
	b.WriteString("<" + tag + ">")
	_ = xml.EscapeText(b, []byte(text)) //nolint:errcheck // strings.Builder writes cannot fail
	b.WriteString("</" + tag + ">")
}
