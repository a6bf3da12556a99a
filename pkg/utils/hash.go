package utils

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// FileMD5 returns the hex MD5 digest of a file's content. The digest identifies
// the source document in the batch summary.
func FileMD5(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", WrapError(err, ErrorTypeIO, "failed to open file for hashing")
	}
	defer file.Close()

	h := md5.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", WrapError(err, ErrorTypeIO, "failed to hash file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
