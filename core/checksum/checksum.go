package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Prefix identifies the digest algorithm in rendered checksums.
// It matches the format the archive reports for linked files.
const Prefix = "md5:"

// chunkSize is the buffer size used when streaming file content.
const chunkSize = 8192

// Sum computes the checksum of everything read from r.
func Sum(r io.Reader) (string, error) {
	h := md5.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("failed to read content: %w", err)
	}
	return Prefix + hex.EncodeToString(h.Sum(nil)), nil
}

// File computes the checksum of the file at path.
// The file is streamed in chunks, so large data files are never
// loaded into memory as a whole.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sum, err := Sum(f)
	if err != nil {
		return "", fmt.Errorf("failed to checksum %s: %w", path, err)
	}
	return sum, nil
}

// Bytes computes the checksum of an in-memory payload.
func Bytes(b []byte) string {
	digest := md5.Sum(b)
	return Prefix + hex.EncodeToString(digest[:])
}
