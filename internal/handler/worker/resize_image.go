package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/task"
	"github.com/fhuszti/medias-display-go/internal/usecase/media"
	"github.com/hibiken/asynq"
)

// ResizeImageHandler handles a resize-image task.
// It maps the requested size to its configured width and delegates the call
// to the service. Failures that a retry cannot fix skip the retry queue.
func ResizeImageHandler(ctx context.Context, p task.ResizeImagePayload, sizes map[model.Size]int, svc port.ImageResizer) error {
	width, ok := sizes[p.Size]
	if !ok {
		logger.Errorf(ctx, "❌  No width configured for size %q", p.Size)
		return fmt.Errorf("no width configured for size %q: %w", p.Size, asynq.SkipRetry)
	}

	in := port.ResizeImageInput{ID: p.ID, Size: p.Size, Width: width}
	if err := svc.ResizeImage(ctx, in); err != nil {
		logger.Errorf(ctx, "❌  Failed to resize image #%s to %s: %v", p.ID, p.Size, err)
		if errors.Is(err, media.ErrObjectNotFound) || errors.Is(err, media.ErrMediaNotReady) || errors.Is(err, media.ErrNotAnImage) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.Infof(ctx, "✅  Successfully resized image #%s to %s", p.ID, p.Size)
	return nil
}
