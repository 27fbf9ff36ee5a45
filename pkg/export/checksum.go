package export

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum returns data's digest in "sha256:<hex>" form.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
