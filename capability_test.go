package qrcard

import (
	"testing"
)

func TestIsValidHashAlgo(t *testing.T) {
	tests := []struct {
		algo  HashAlgo
		valid bool
	}{
		{HashBLAKE2b, true},
		{HashSHA256, true},
		{"argon2", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidHashAlgo(tt.algo); got != tt.valid {
			t.Errorf("IsValidHashAlgo(%q) = %v, want %v", tt.algo, got, tt.valid)
		}
	}
}

func TestCapabilityTablesMatchBuiltins(t *testing.T) {
	maskers := builtinMaskers()
	if len(maskers) != len(validMaskTypes) {
		t.Errorf("builtin maskers = %d, valid mask types = %d", len(maskers), len(validMaskTypes))
	}
	for mt := range validMaskTypes {
		if _, ok := maskers[mt]; !ok {
			t.Errorf("mask type %q has no builtin masker", mt)
		}
	}
	for algo := range validHashAlgos {
		if _, ok := HasherFor(algo); !ok {
			t.Errorf("hash algo %q has no hasher", algo)
		}
	}
}
