package storage

import (
	"bytes"
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// DigestSize is the length of a record digest in bytes.
const DigestSize = 32

// Digest returns the BLAKE2b-256 hash of data.
func Digest(data []byte) []byte {
	h, _ := blake2b.New(DigestSize, nil) // unkeyed with a valid size never fails
	h.Write(data)
	return h.Sum(nil)
}

// DigestHex returns Digest(data) as lowercase hex.
func DigestHex(data []byte) string {
	return hex.EncodeToString(Digest(data))
}

// SameDigest reports whether data hashes to digest.
func SameDigest(data, digest []byte) bool {
	return bytes.Equal(Digest(data), digest)
}
