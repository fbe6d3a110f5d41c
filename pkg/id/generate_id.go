package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID32 mints a public identifier: exactly 32 lowercase hex characters,
// no separators or prefixes. All public ids in the schema share this shape.
func NewID32() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
