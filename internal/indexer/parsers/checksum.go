package parsers

import (
	"fmt"

	"github.com/minio/highwayhash"
)

var checksumKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Checksum returns the hex-encoded 64-bit HighwayHash of content.
func Checksum(content []byte) string {
	return fmt.Sprintf("%016x", highwayhash.Sum64(content, checksumKey))
}
