package model

import (
	"strings"
	"time"

	"github.com/fhuszti/medias-display-go/internal/uuid"
)

type MediaStatus string

const (
	MediaStatusPending   MediaStatus = "pending"
	MediaStatusCompleted MediaStatus = "completed"
	MediaStatusFailed    MediaStatus = "failed"
)

// MediaType is the coarse family of a media, derived from its mime type.
type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeDocument MediaType = "document"
)

type Media struct {
	ID               uuid.UUID   `json:"id"`
	Bucket           string      `json:"bucket"`
	ObjectKey        string      `json:"object_key"`
	OriginalFilename string      `json:"original_filename"`
	MimeType         string      `json:"mime_type"`
	SizeBytes        int64       `json:"size_bytes"`
	Status           MediaStatus `json:"status"`
	Width            int         `json:"width,omitempty"`
	Height           int         `json:"height,omitempty"`
	Variants         Variants    `json:"variants"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (m *Media) MediaType() MediaType {
	family, _, _ := strings.Cut(strings.ToLower(m.MimeType), "/")
	switch family {
	case "image":
		return MediaTypeImage
	case "video":
		return MediaTypeVideo
	case "audio":
		return MediaTypeAudio
	default:
		return MediaTypeDocument
	}
}

// IsImage reports whether the media can be displayed as an image.
// A nil media is never an image.
func (m *Media) IsImage() bool {
	return m != nil && m.MediaType() == MediaTypeImage
}

// Variant returns the generated thumbnail for size, if one was recorded.
func (m *Media) Variant(size Size) (Variant, bool) {
	for _, v := range m.Variants {
		if v.Size == size {
			return v, true
		}
	}
	return Variant{}, false
}
