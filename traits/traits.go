package traits

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// TraitSet is the document served by the trait endpoint.
type TraitSet struct {
	Traits []string
	Key    string
}

// HashResult is the ordered list of hex digests, one per trait.
type HashResult []string

// MarshalJSON renders a nil result as [] rather than null.
func (r HashResult) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(r))
}

// String never includes the key.
func (s TraitSet) String() string {
	return fmt.Sprintf("TraitSet{traits=%d key=[redacted]}", len(s.Traits))
}

// LogValue keeps the key out of structured logs.
func (s TraitSet) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("traits", len(s.Traits)),
		slog.Bool("key_present", s.Key != ""),
	)
}

// Validate checks the constraints Hash relies on. An empty key is allowed and
// yields unkeyed BLAKE2b-512 digests.
func (s TraitSet) Validate() error {
	if len(s.Key) > MaxKeySize {
		return NewError(KindSchema, RuleKeyTooLong, fmt.Sprintf("key is %d bytes; max %d", len(s.Key), MaxKeySize))
	}
	return nil
}

// DecodeTraitSet parses and validates a trait document.
//
// Expected shape: {"traits": ["...", ...], "key": "..."}. Unknown fields are
// ignored. Null values and null trait elements are rejected.
func DecodeTraitSet(body []byte) (TraitSet, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return TraitSet{}, WrapError(KindSchema, RuleNotObject, "response body is not a JSON object", err)
	}

	rawTraits, ok := fields["traits"]
	if !ok {
		return TraitSet{}, NewError(KindSchema, RuleTraitsMissing, "response is missing traits")
	}
	var items []*string
	if err := json.Unmarshal(rawTraits, &items); err != nil || items == nil {
		return TraitSet{}, WrapError(KindSchema, RuleTraitsMalformed, "traits must be an array of strings", err)
	}
	traits := make([]string, len(items))
	for i, item := range items {
		if item == nil {
			return TraitSet{}, NewError(KindSchema, RuleTraitsMalformed, fmt.Sprintf("traits[%d] is null", i))
		}
		traits[i] = *item
	}

	rawKey, ok := fields["key"]
	if !ok {
		return TraitSet{}, NewError(KindSchema, RuleKeyMissing, "response is missing key")
	}
	var key *string
	if err := json.Unmarshal(rawKey, &key); err != nil || key == nil {
		return TraitSet{}, WrapError(KindSchema, RuleKeyMalformed, "key must be a string", err)
	}

	set := TraitSet{Traits: traits, Key: *key}
	if err := set.Validate(); err != nil {
		return TraitSet{}, err
	}
	return set, nil
}
