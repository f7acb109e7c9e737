// Package xar reads and writes XAR archives, the container format used for
// multi-architecture bitcode bundles.
//
// An archive is laid out as:
//   - Header: fixed 28 bytes, big-endian, optionally followed by a checksum name
//   - TOC: zlib-compressed XML describing every entry and its heap location
//   - Heap: the TOC checksum followed by entry data, each optionally compressed
//
// Only the subset of the format that bitcode bundles use is supported:
// regular files and directories, octet-stream, gzip (zlib) and bzip2
// encodings, and sha1, md5, sha256 and sha512 checksums.
package xar
