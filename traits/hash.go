package traits

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const (
	// DigestSize is the BLAKE2b output size in bytes.
	DigestSize = blake2b.Size
	// HexDigestLen is the length of a rendered digest.
	HexDigestLen = 2 * DigestSize
	// MaxKeySize is the largest key BLAKE2b accepts.
	MaxKeySize = blake2b.Size
)

// HashTrait returns hex(BLAKE2b-512(key, trait)).
func HashTrait(trait, key string) (string, error) {
	h, err := blake2b.New512([]byte(key))
	if err != nil {
		return "", keyError(key, err)
	}
	_, _ = h.Write([]byte(trait))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Hash digests every trait in order with the set's key.
// An empty key yields unkeyed digests.
func Hash(set TraitSet) (HashResult, error) {
	h, err := blake2b.New512([]byte(set.Key))
	if err != nil {
		return nil, keyError(set.Key, err)
	}
	out := make(HashResult, 0, len(set.Traits))
	sum := make([]byte, 0, DigestSize)
	for _, trait := range set.Traits {
		h.Reset()
		_, _ = h.Write([]byte(trait))
		sum = h.Sum(sum[:0])
		out = append(out, hex.EncodeToString(sum))
	}
	return out, nil
}

func keyError(key string, cause error) error {
	return WrapError(KindSchema, RuleKeyTooLong, fmt.Sprintf("key is %d bytes; max %d", len(key), MaxKeySize), cause)
}
