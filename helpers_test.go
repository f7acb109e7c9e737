package ebc

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/ebc/internal/testutil"
)

// fakeCodec is a scripted Codec that records the scratch paths it receives.
type fakeCodec struct {
	toc        []byte
	tocOK      bool
	entries    []ExtractedBuffer
	extractErr error
	tempDir    string

	archivePaths []string
	xmlPaths     []string
}

func (c *fakeCodec) ExtractToDisk(archivePath, prefix string) ([]ExtractedFile, error) {
	c.archivePaths = append(c.archivePaths, archivePath)
	if c.extractErr != nil {
		return nil, c.extractErr
	}
	out := make([]ExtractedFile, 0, len(c.entries))
	for _, e := range c.entries {
		name, err := writeUnique(c.tempDir, prefix+"_", "", e.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, ExtractedFile{Path: e.Path, File: name})
	}
	return out, nil
}

func (c *fakeCodec) ExtractToMemory(archivePath string) ([]ExtractedBuffer, error) {
	c.archivePaths = append(c.archivePaths, archivePath)
	if c.extractErr != nil {
		return nil, c.extractErr
	}
	return c.entries, nil
}

func (c *fakeCodec) WriteTOC(archivePath, xmlPath string) bool {
	c.archivePaths = append(c.archivePaths, archivePath)
	c.xmlPaths = append(c.xmlPaths, xmlPath)
	if !c.tocOK {
		return false
	}
	return os.WriteFile(xmlPath, c.toc, 0o600) == nil
}

var errFakeExtract = errors.New("fake extract failure")

// twoEntryArchive is the a.bc / b.o bundle used across tests.
func twoEntryArchive(t *testing.T) []byte {
	t.Helper()
	return testutil.BuildTestArchive(t, []testutil.TestEntry{
		{Name: "a.bc", Data: testutil.Bitcode("unit a"), FileType: "Bitcode", Clang: []string{"-target", "x86_64"}},
		{Name: "b.o", Data: []byte("object b"), FileType: "Object", Compress: true},
	})
}

// requireGone asserts that none of paths exist.
func requireGone(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		_, err := os.Stat(p)
		require.ErrorIs(t, err, os.ErrNotExist, "scratch file %s survived", p)
	}
}
