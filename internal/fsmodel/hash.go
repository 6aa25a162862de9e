package fsmodel

import "encoding/hex"

// ContentHash is a 32-byte BLAKE3 digest. Equality implies bytewise-identical
// content (probabilistically).
type ContentHash [32]byte

// Hex renders the hash as lowercase hex, matching the JSON export format.
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}
