package renderer

import (
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/fhuszti/medias-display-go/internal/display"
)

// HTTPRenderer turns display snapshots into the JSON body served to clients
// together with an ETag derived from it.
type HTTPRenderer interface {
	RenderSnapshot(s display.Snapshot) ([]byte, string, error)
}

type httpRenderer struct{}

// compile-time check: *httpRenderer must satisfy HTTPRenderer
var _ HTTPRenderer = (*httpRenderer)(nil)

func NewHTTPRenderer() HTTPRenderer {
	return &httpRenderer{}
}

// RenderSnapshot returns the JSON encoded snapshot and a quoted ETag string.
// Two snapshots with the same content always share an ETag.
func (r *httpRenderer) RenderSnapshot(s display.Snapshot) ([]byte, string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, "", fmt.Errorf("json marshal: %w", err)
	}
	return raw, ETag(raw), nil
}

// ETag is the quoted CRC32 of raw.
func ETag(raw []byte) string {
	return fmt.Sprintf("\"%08x\"", crc32.ChecksumIEEE(raw))
}
