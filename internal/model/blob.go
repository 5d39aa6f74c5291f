package model

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Blob is a fetched binary payload together with the content type it was
// served with.
type Blob struct {
	Data        []byte
	ContentType string
}

// Ref returns the content digest of the payload in the form "blake3:<hex>".
func (b Blob) Ref() string {
	sum := blake3.Sum256(b.Data)
	return "blake3:" + hex.EncodeToString(sum[:])
}

func (b Blob) Len() int {
	return len(b.Data)
}
