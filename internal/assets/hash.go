package assets

import (
	"encoding/binary"

	"github.com/minio/crc64nvme"
	"github.com/mr-tron/base58"
)

// contentHash is the cache-busting token of an artifact. It depends only on
// the artifact's bytes.
func contentHash(data []byte) string {
	h := crc64nvme.New()
	h.Write(data)

	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.Sum64())
	return base58.Encode(sum[:])
}
