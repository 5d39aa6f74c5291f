package media

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
)

type imageResizerSrv struct {
	repo    port.MediaRepository
	resizer port.FileResizer
	strg    port.Storage
	cache   port.Cache
}

// compile-time check: *imageResizerSrv must satisfy port.ImageResizer
var _ port.ImageResizer = (*imageResizerSrv)(nil)

// NewImageResizer constructs an ImageResizer implementation.
func NewImageResizer(repo port.MediaRepository, resizer port.FileResizer, strg port.Storage, cache port.Cache) port.ImageResizer {
	return &imageResizerSrv{repo: repo, resizer: resizer, strg: strg, cache: cache}
}

// ResizeImage generates the thumbnail of the given size for an image media,
// stores it next to the original and records it as a variant. Already
// generated thumbnails are left untouched.
func (s *imageResizerSrv) ResizeImage(ctx context.Context, in port.ResizeImageInput) error {
	if in.Size.IsOriginal() {
		return fmt.Errorf("cannot resize media #%s to its original size", in.ID)
	}
	if in.Width <= 0 {
		return fmt.Errorf("invalid target width %d for size %q", in.Width, in.Size)
	}

	media, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrObjectNotFound
		}
		return err
	}
	if media.Status != model.MediaStatusCompleted {
		return ErrMediaNotReady
	}
	if !media.IsImage() {
		return ErrNotAnImage
	}

	if v, ok := media.Variant(in.Size); ok {
		exists, err := s.strg.FileExists(ctx, media.Bucket, v.ObjectKey)
		if err != nil {
			return fmt.Errorf("error checking if variant %q exists: %w", v.ObjectKey, err)
		}
		if exists {
			logger.Infof(ctx, "variant %q of media #%s already exists, skipping", in.Size, media.ID)
			return nil
		}
	}

	original, _, err := s.strg.ReadFile(ctx, media.Bucket, media.ObjectKey)
	if err != nil {
		return fmt.Errorf("failed to read original %q: %w", media.ObjectKey, err)
	}

	resized, err := s.resizer.Resize(bytes.NewReader(original), in.Width)
	if err != nil {
		return fmt.Errorf("failed to resize media #%s: %w", media.ID, err)
	}

	variantKey := VariantKey(media, in.Size)
	opts := map[string]string{"Content-Type": resized.ContentType}
	if err := s.strg.SaveFile(ctx, media.Bucket, variantKey, bytes.NewReader(resized.Data), int64(len(resized.Data)), opts); err != nil {
		return fmt.Errorf("failed to save variant %q: %w", variantKey, err)
	}

	variants := media.Variants.With(model.Variant{
		Size:      in.Size,
		ObjectKey: variantKey,
		SizeBytes: int64(len(resized.Data)),
		Width:     resized.Width,
		Height:    resized.Height,
	})
	if err := s.repo.UpdateVariants(ctx, media.ID, variants); err != nil {
		return fmt.Errorf("failed updating media: %w", err)
	}

	if err := s.cache.DeleteMedia(ctx, media.ID); err != nil {
		logger.Warnf(ctx, "failed deleting cache for media #%s: %v", media.ID, err)
	}
	return nil
}
