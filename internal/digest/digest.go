// Package digest computes the hex-encoded SHA-256 content digests used as
// integrity tokens throughout the manifest catalog.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// chunkSize bounds the per-read buffer so large objects never need to be
// resident in memory.
const chunkSize = 64 * 1024

// Sum streams the reader through SHA-256 and returns the lowercase hex
// digest plus the number of bytes consumed. Read failures are returned to
// the caller unmodified; no retry happens here.
func Sum(r io.Reader) (string, int64, error) {
	hash := sha256.New()
	buf := make([]byte, chunkSize)
	n, err := io.CopyBuffer(hash, r, buf)
	if err != nil {
		return "", 0, fmt.Errorf("digest stream: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), n, nil
}

// SumBytes digests an in-memory document.
func SumBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SumFile digests a local file and reports its byte length.
func SumFile(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return Sum(file)
}
