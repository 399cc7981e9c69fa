package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/crypto/blake2b"
)

func TestCIDv1RawSHA256_KnownVector(t *testing.T) {
	got := CIDv1RawSHA256([]byte("hello"))
	if got != "bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq" {
		t.Fatalf("unexpected cid %s", got)
	}
}

func TestCIDv1RawBlake2b512_KnownVector(t *testing.T) {
	got := CIDv1RawBlake2b512([]byte(`["aa","bb"]`))
	want := "bafk4bzacid7krrfnpkmvpmkdc6ycxnkgqa4iogcru2aq3n6ydw633aicsicu7ad6xwubi2nsd3ydpei3uwxzjo75rev6f2zjmvtdfz3x5sgtrwjb"
	if got != want {
		t.Fatalf("unexpected cid %s", got)
	}
}

func TestCIDv1RawBlake2b512_DigestMatchesBlake2b(t *testing.T) {
	data := []byte(`["aa","bb"]`)
	id, err := CIDv1RawBlake2b512CID(data)
	if err != nil {
		t.Fatalf("CIDv1RawBlake2b512CID: %v", err)
	}
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec.Code != 0xb240 || dec.Length != blake2b.Size {
		t.Fatalf("unexpected multihash code=%x len=%d", dec.Code, dec.Length)
	}
	want := blake2b.Sum512(data)
	if string(dec.Digest) != string(want[:]) {
		t.Fatalf("multihash digest differs from blake2b.Sum512")
	}
}

func TestCIDv1RawBlake2b512_Prefix(t *testing.T) {
	id, err := CIDv1RawBlake2b512CID([]byte("payload"))
	if err != nil {
		t.Fatalf("CIDv1RawBlake2b512CID: %v", err)
	}
	p := id.Prefix()
	if p.Version != 1 || p.Codec != cid.Raw {
		t.Fatalf("unexpected prefix %+v", p)
	}
	if p.MhType != multihash.BLAKE2B_MAX || p.MhLength != 64 {
		t.Fatalf("expected blake2b-512 multihash, got type=%x len=%d", p.MhType, p.MhLength)
	}
}

func TestVerify(t *testing.T) {
	data := []byte(`["x"]`)
	for _, mk := range []func([]byte) (cid.Cid, error){CIDv1RawSHA256CID, CIDv1RawBlake2b512CID} {
		id, err := mk(data)
		if err != nil {
			t.Fatalf("cid: %v", err)
		}
		if !Verify(id, data) {
			t.Fatalf("expected %s to verify", id)
		}
		if Verify(id, []byte(`["y"]`)) {
			t.Fatalf("expected mismatch for different data")
		}
	}
	if Verify(cid.Undef, data) {
		t.Fatalf("expected undefined cid to fail")
	}
}

func TestVerifyString(t *testing.T) {
	data := []byte("hello")
	ok, err := VerifyString("bafkreibm6jg3ux5qumhcn2b3flc3tyu6dmlb4xa7u5bf44yegnrjhc4yeq", data)
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	ok, err = VerifyString(CIDv1RawBlake2b512(data), []byte("other"))
	if err != nil || ok {
		t.Fatalf("expected mismatch, got %v %v", ok, err)
	}
	if _, err := VerifyString("not-a-cid", data); err == nil {
		t.Fatalf("expected decode error")
	}
}
