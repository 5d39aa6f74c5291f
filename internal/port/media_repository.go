package port

import (
	"context"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// MediaRepository defines persistence operations for the media catalogue.
type MediaRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Media, error)
	UpdateVariants(ctx context.Context, id uuid.UUID, variants model.Variants) error
}
