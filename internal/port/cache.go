package port

import (
	"context"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// Cache keeps catalogue records close to the display path.
// GetMedia returns (nil, nil) on a miss.
type Cache interface {
	GetMedia(ctx context.Context, id uuid.UUID) (*model.Media, error)
	SetMedia(ctx context.Context, media *model.Media)
	DeleteMedia(ctx context.Context, id uuid.UUID) error
}
