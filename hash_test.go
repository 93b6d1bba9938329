package qrcard

import (
	"testing"
)

func TestBLAKE2bHasher(t *testing.T) {
	h := BLAKE2bHasher()

	got := h.Hash([]byte("abc"))
	want := "bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319"
	if got != want {
		t.Errorf("Hash(abc) = %s, want %s", got, want)
	}
}

func TestSHA256Hasher(t *testing.T) {
	h := SHA256Hasher()

	got := h.Hash([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("Hash(abc) = %s, want %s", got, want)
	}
}

func TestHasherFor(t *testing.T) {
	tests := []struct {
		algo HashAlgo
		ok   bool
	}{
		{HashBLAKE2b, true},
		{HashSHA256, true},
		{"md5", false},
	}

	for _, tt := range tests {
		h, ok := HasherFor(tt.algo)
		if ok != tt.ok {
			t.Errorf("HasherFor(%q) ok = %v, want %v", tt.algo, ok, tt.ok)
		}
		if ok && h == nil {
			t.Errorf("HasherFor(%q) returned nil hasher", tt.algo)
		}
	}
}

func TestHasher_PayloadFingerprints(t *testing.T) {
	for _, h := range []Hasher{BLAKE2bHasher(), SHA256Hasher()} {
		a := h.Hash([]byte(`{"name":"Jane"}`))
		b := h.Hash([]byte(`{"name":"Jane"}`))
		c := h.Hash([]byte(`{"name":"John"}`))

		if a != b {
			t.Errorf("%T.Hash() should be deterministic", h)
		}
		if a == c {
			t.Errorf("%T.Hash() should differ for different payloads", h)
		}
		if len(a) != 64 {
			t.Errorf("%T.Hash() length = %d, want 64", h, len(a))
		}
	}
}
