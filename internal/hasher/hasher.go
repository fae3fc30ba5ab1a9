// Package hasher streams a file through SHA-256 with a bounded buffer and
// emits a lowercase hex digest. The digest is a content fingerprint for
// equality testing only; no cryptographic claim is made about it.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// bufferSize is the buffered-reader size recommended by the spec (>= 64 KiB).
const bufferSize = 64 * 1024

// HashFile computes the lowercase hex SHA-256 digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, bufferSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("read %s for hashing: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
