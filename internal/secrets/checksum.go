package secrets

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// checksumLen is the number of hex characters kept from the full digest.
const checksumLen = 16

// Checksum computes a short integrity token for a configuration map. Keys
// are sorted before hashing so the same logical map always yields the same
// token regardless of insertion order. Keys and values are length-prefixed
// in the digest input, so delimiter characters inside a value cannot make
// two different maps collide. This is an integrity aid for clients and
// debugging, not a security primitive.
func Checksum(configMap map[string]string) string {
	keys := make([]string, 0, len(configMap))
	for k := range configMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	var lenBuf [8]byte
	for _, k := range keys {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(k)))
		h.Write(lenBuf[:])
		h.Write([]byte(k))

		v := configMap[k]
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(v)))
		h.Write(lenBuf[:])
		h.Write([]byte(v))
	}
	return hex.EncodeToString(h.Sum(nil))[:checksumLen]
}
