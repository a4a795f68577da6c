package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest identifies the exact bytes of an input file (a source export or a forest).
type Digest struct {
	SHA256 string
	Size   int64
}

// FileDigest streams the file at path through SHA-256.
func FileDigest(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, fmt.Errorf("open file for digest: %w", err)
	}
	defer f.Close()
	return ReaderDigest(f)
}

// ReaderDigest consumes r and returns its digest.
func ReaderDigest(r io.Reader) (Digest, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: %w", err)
	}
	return Digest{SHA256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}
