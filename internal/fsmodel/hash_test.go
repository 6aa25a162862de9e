package fsmodel

import "testing"

func TestContentHashHex(t *testing.T) {
	var h ContentHash
	h[0] = 0xab
	h[31] = 0xcd
	got := h.Hex()
	if len(got) != 64 {
		t.Fatalf("Hex() length = %d, want 64", len(got))
	}
	if got[:2] != "ab" || got[len(got)-2:] != "cd" {
		t.Errorf("Hex() = %q, want prefix ab and suffix cd", got)
	}
}
