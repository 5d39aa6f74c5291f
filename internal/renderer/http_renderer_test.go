package renderer

import (
	"encoding/json"
	"fmt"
	"hash/crc32"
	"testing"

	"github.com/fhuszti/medias-display-go/internal/display"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

func TestRenderSnapshot(t *testing.T) {
	fileID := uuid.NewUUID()
	snap := display.Snapshot{
		ID:       uuid.NewUUID(),
		FileID:   &fileID,
		Size:     model.SizeSmall,
		State:    display.StateReady,
		URL:      "http://localhost:8080/objects/abc",
		SharedBy: 2,
		Version:  3,
	}
	r := NewHTTPRenderer()

	raw, etag, err := r.RenderSnapshot(snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected, _ := json.Marshal(snap)
	if string(raw) != string(expected) {
		t.Errorf("raw mismatch: got %s want %s", raw, expected)
	}
	if want := fmt.Sprintf("\"%08x\"", crc32.ChecksumIEEE(expected)); etag != want {
		t.Errorf("etag = %s; want %s", etag, want)
	}

	_, again, _ := r.RenderSnapshot(snap)
	if again != etag {
		t.Error("same snapshot must give the same etag")
	}

	snap.Version++
	_, moved, _ := r.RenderSnapshot(snap)
	if moved == etag {
		t.Error("a new version must change the etag")
	}
}

func TestRenderSnapshot_OmitsURLUnlessSet(t *testing.T) {
	raw, _, err := NewHTTPRenderer().RenderSnapshot(display.Snapshot{State: display.StateLoading})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := out["url"]; ok {
		t.Errorf("url should be omitted while loading: %s", raw)
	}
	if out["file_id"] != nil {
		t.Errorf("file_id = %v; want null", out["file_id"])
	}
}
