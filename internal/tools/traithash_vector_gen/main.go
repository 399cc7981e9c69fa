// Command traithash_vector_gen regenerates testdata/conformance/traits/vectors.json.
//
//	go run ./internal/tools/traithash_vector_gen > testdata/conformance/traits/vectors.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"xdao.co/traithash/cidutil"
	"xdao.co/traithash/traits"
)

type document struct {
	Traits []string `json:"traits"`
	Key    string   `json:"key"`
}

type vector struct {
	Name       string            `json:"name"`
	Document   document          `json:"document"`
	Hashes     traits.HashResult `json:"hashes"`
	PayloadCID string            `json:"payload_cid"`
}

var cases = []struct {
	name   string
	traits []string
	key    string
}{
	{"two-traits", []string{"a", "b"}, "k"},
	{"empty-traits", []string{}, "k"},
	{"empty-trait-string", []string{""}, "k"},
	{"unicode", []string{"héllo", "日本語", "🙂"}, "kéy"},
	{"duplicates-keep-order", []string{"z", "a", "z"}, "secret"},
	{"max-key", []string{"trait"}, strings.Repeat("K", traits.MaxKeySize)},
	{"whitespace", []string{" leading", " trailing ", "tab\there"}, "spaced key"},
	{"empty-key", []string{"a", "b"}, ""},
}

func main() {
	out := struct {
		Format  string   `json:"format"`
		Vectors []vector `json:"vectors"`
	}{Format: "traithash-blake2b-512"}

	for _, c := range cases {
		set := traits.TraitSet{Traits: c.traits, Key: c.key}
		hashes, err := traits.Hash(set)
		if err != nil {
			panic(err)
		}
		payload, err := json.Marshal(hashes)
		if err != nil {
			panic(err)
		}
		out.Vectors = append(out.Vectors, vector{
			Name:       c.name,
			Document:   document{Traits: c.traits, Key: c.key},
			Hashes:     hashes,
			PayloadCID: cidutil.CIDv1RawBlake2b512(payload),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
