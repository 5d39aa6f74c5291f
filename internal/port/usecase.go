package port

import (
	"context"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// MediaGetter retrieves a displayable media record from the catalogue.
type MediaGetter interface {
	GetMedia(ctx context.Context, id uuid.UUID) (*model.Media, error)
}

// BlobFetcher retrieves the binary payload of a media at a given size,
// falling back to the original when the thumbnail does not exist.
type BlobFetcher interface {
	FetchBlob(ctx context.Context, media *model.Media, size model.Size) (model.Blob, error)
}

// ImageResizer generates a missing thumbnail and records it on the media.
type ImageResizer interface {
	ResizeImage(ctx context.Context, in ResizeImageInput) error
}
type ResizeImageInput struct {
	ID    uuid.UUID
	Size  model.Size
	Width int
}
