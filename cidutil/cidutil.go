// Package cidutil renders content identifiers for submitted payloads.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	id, err := CIDv1RawSHA256CID(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	return rawCID(data, multihash.SHA2_256)
}

// CIDv1RawBlake2b512 returns a CIDv1 string using the "raw" multicodec
// and an unkeyed blake2b-512 multihash. This is the payload receipt format.
func CIDv1RawBlake2b512(data []byte) string {
	id, err := CIDv1RawBlake2b512CID(data)
	if err != nil {
		return ""
	}
	return id.String()
}

// CIDv1RawBlake2b512CID returns a CIDv1 (raw + blake2b-512) derived from data.
func CIDv1RawBlake2b512CID(data []byte) (cid.Cid, error) {
	return rawCID(data, multihash.BLAKE2B_MAX)
}

// Verify reports whether id addresses data, using id's own hash function.
func Verify(id cid.Cid, data []byte) bool {
	if !id.Defined() {
		return false
	}
	prefix := id.Prefix()
	got, err := prefix.Sum(data)
	if err != nil {
		return false
	}
	return got.Equals(id)
}

// VerifyString decodes s and reports whether it addresses data.
func VerifyString(s string, data []byte) (bool, error) {
	id, err := cid.Decode(s)
	if err != nil {
		return false, err
	}
	return Verify(id, data), nil
}

func rawCID(data []byte, code uint64) (cid.Cid, error) {
	// -1 selects the hash function's default length.
	sum, err := multihash.Sum(data, code, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}
