package port

import (
	"context"

	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

// TaskDispatcher enqueues asynchronous tasks related to media display.
type TaskDispatcher interface {
	EnqueueResizeImage(ctx context.Context, id uuid.UUID, size model.Size) error
}
