package pptx

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// BytesMD5 returns the hex-encoded MD5 digest of data. MD5 is used as a
// practical exact-match identity for image payloads, not for security.
func BytesMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// FileMD5 returns the hex-encoded MD5 digest of the file at path.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("cannot hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
