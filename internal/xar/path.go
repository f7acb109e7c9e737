package xar

import (
	"io/fs"
	"strings"
)

// NormalizePath returns the canonical form of a TOC entry name: surrounding
// whitespace and empty elements are dropped, so " /dir//1/" becomes "dir/1".
// "." and ".." elements are kept for validEntryPath to reject. A name with
// no elements becomes ".".
func NormalizePath(p string) string {
	elems := splitPath(p)
	if len(elems) == 0 {
		return "."
	}
	return strings.Join(elems, "/")
}

// joinPath appends a child name to a parent entry path. A child with no
// elements yields "." so that it fails validation.
func joinPath(parent, name string) string {
	name = NormalizePath(name)
	if parent == "" || name == "." {
		return name
	}
	return parent + "/" + name
}

func splitPath(p string) []string {
	return strings.FieldsFunc(strings.TrimSpace(p), func(r rune) bool { return r == '/' })
}

// validEntryPath reports whether p names a file inside the archive.
func validEntryPath(p string) bool {
	return p != "." && fs.ValidPath(p)
}
