package xar

import (
	"crypto/md5"  //nolint:gosec // xar archives commonly record md5 checksums
	"crypto/sha1" //nolint:gosec // sha1 is the default xar checksum
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/ebc/internal/ebctype"
)

// Checksum is a digest recorded in the table of contents.
type Checksum struct {
	// Style names the hash algorithm, e.g. "sha1".
	Style string

	// Digest is the lower-case hex encoding of the hash.
	Digest string
}

// IsZero reports whether no checksum was recorded.
func (c Checksum) IsZero() bool {
	return c.Digest == "" || isNoneStyle(c.Style)
}

func isNoneStyle(style string) bool {
	s := strings.ToLower(style)
	return s == "" || s == "none"
}

// newHash returns a hash for the named style. A nil hash means no checksum.
//
// sha1 and md5 come from crypto; the sha2 family is resolved through
// go-digest so the accepted names match OCI digest algorithm names.
func newHash(style string) (hash.Hash, error) {
	s := strings.ToLower(style)
	switch s {
	case "", "none":
		return nil, nil
	case "sha1":
		return sha1.New(), nil //nolint:gosec // format-mandated
	case "md5":
		return md5.New(), nil //nolint:gosec // format-mandated
	}
	alg := digest.Algorithm(s)
	if !alg.Available() {
		return nil, fmt.Errorf("%w: unsupported checksum style %q", ebctype.ErrInvalidArchive, style)
	}
	return alg.Hash(), nil
}

// sum computes the hex digest of data for style.
func sum(style string, data []byte) (string, error) {
	h, err := newHash(style)
	if err != nil || h == nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// verify checks data against c. A zero checksum always verifies.
func verify(c Checksum, data []byte) error {
	if c.IsZero() {
		return nil
	}
	got, err := sum(c.Style, data)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, strings.TrimSpace(c.Digest)) {
		return ebctype.ErrChecksumMismatch
	}
	return nil
}
