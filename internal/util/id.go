package util

import (
	"crypto/rand"
	"encoding/hex"
)

func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// Suffix returns a short random hex string for object key uniqueness.
func Suffix() string {
	bytes := make([]byte, 6)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
