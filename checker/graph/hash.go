package graph

import (
	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash returns the 64-bit highwayhash of data
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

// Fingerprint hashes the canonical JSON form of a serialized type
func Fingerprint(data Serialized) (uint64, error) {
	encoded, err := MarshalSerialized(data)
	if err != nil {
		return 0, err
	}
	return Hash(encoded)
}
