package core

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
)

// Hash represents a content hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := blake3.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough to tell texts apart in logs.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// TextHash fingerprints a printable text.
type TextHash Hash

func NewTextHash(printable string) TextHash { return TextHash(NewHash([]byte(printable))) }
func (h TextHash) String() string           { return Hash(h).String() }

// ComputeRecipeHash fingerprints a recipe name plus its ordered parameters.
func ComputeRecipeHash(recipe string, params ...string) Hash {
	var data strings.Builder
	data.WriteString(recipe)
	for _, p := range params {
		data.WriteByte(0)
		data.WriteString(p)
	}
	return NewHash([]byte(data.String()))
}
