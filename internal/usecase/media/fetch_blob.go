package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/port"
	"golang.org/x/sync/singleflight"
)

type blobFetcherSrv struct {
	strg       port.Storage
	dispatcher port.TaskDispatcher
	rec        port.FetchRecorder
	cfg        FetchConfig

	group singleflight.Group
}

// compile-time check: *blobFetcherSrv must satisfy port.BlobFetcher
var _ port.BlobFetcher = (*blobFetcherSrv)(nil)

func NewBlobFetcher(strg port.Storage, dispatcher port.TaskDispatcher, rec port.FetchRecorder, cfg FetchConfig) port.BlobFetcher {
	return &blobFetcherSrv{
		strg:       strg,
		dispatcher: dispatcher,
		rec:        rec,
		cfg:        cfg.withDefaults(),
	}
}

// FetchBlob downloads the media at the requested size. A missing thumbnail is
// not an error: the original is returned instead and a resize task is queued.
func (s *blobFetcherSrv) FetchBlob(ctx context.Context, media *model.Media, size model.Size) (model.Blob, error) {
	if !media.IsImage() {
		return model.Blob{}, ErrNotAnImage
	}
	start := time.Now()

	if !size.IsOriginal() {
		blob, err := s.fetchVariant(ctx, media, size)
		switch {
		case err == nil:
			s.rec.FetchCompleted(size, "ok", time.Since(start))
			return blob, nil
		case errors.Is(err, ErrThumbnailMissing):
			s.rec.ThumbnailFallback(size)
			logger.Infof(ctx, "thumbnail %q missing for media #%s, falling back to original", size, media.ID)
			if derr := s.dispatcher.EnqueueResizeImage(ctx, media.ID, size); derr != nil {
				logger.Warnf(ctx, "could not enqueue resize of media #%s to %q: %v", media.ID, size, derr)
			}
		default:
			s.rec.FetchCompleted(size, "error", time.Since(start))
			return model.Blob{}, err
		}
	}

	blob, err := s.fetchShared(ctx, media.Bucket, media.ObjectKey)
	if err != nil {
		s.rec.FetchCompleted(size, "error", time.Since(start))
		return model.Blob{}, fmt.Errorf("%w: media #%s: %w", ErrFetchFailed, media.ID, err)
	}
	if blob.ContentType == "" {
		blob.ContentType = media.MimeType
	}

	outcome := "ok"
	if !size.IsOriginal() {
		outcome = "fallback"
	}
	s.rec.FetchCompleted(size, outcome, time.Since(start))
	return blob, nil
}

func (s *blobFetcherSrv) fetchVariant(ctx context.Context, media *model.Media, size model.Size) (model.Blob, error) {
	variant, ok := media.Variant(size)
	if !ok {
		return model.Blob{}, ErrThumbnailMissing
	}

	blob, err := s.fetchShared(ctx, media.Bucket, variant.ObjectKey)
	if errors.Is(err, ErrObjectNotFound) {
		return model.Blob{}, ErrThumbnailMissing
	}
	if err != nil {
		return model.Blob{}, fmt.Errorf("%w: media #%s at size %q: %w", ErrFetchFailed, media.ID, size, err)
	}
	if blob.ContentType == "" {
		blob.ContentType = VariantContentType
	}
	return blob, nil
}

// fetchShared joins concurrent downloads of the same object. The download
// itself is detached from the caller so that one consumer going away does not
// fail the others; each caller still stops waiting when its own ctx is done.
func (s *blobFetcherSrv) fetchShared(ctx context.Context, bucket, key string) (model.Blob, error) {
	ch := s.group.DoChan(bucket+"/"+key, func() (any, error) {
		return s.fetchWithRetry(context.WithoutCancel(ctx), bucket, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return model.Blob{}, res.Err
		}
		return res.Val.(model.Blob), nil
	case <-ctx.Done():
		return model.Blob{}, ctx.Err()
	}
}

func (s *blobFetcherSrv) fetchWithRetry(ctx context.Context, bucket, key string) (model.Blob, error) {
	op := func() (model.Blob, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()

		data, info, err := s.strg.ReadFile(attemptCtx, bucket, key)
		if err != nil {
			if errors.Is(err, ErrObjectNotFound) || errors.Is(err, ErrBucketNotFound) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrObjectTooLarge) {
				return model.Blob{}, backoff.Permanent(err)
			}
			logger.Debugf(ctx, "reading %q from bucket %q failed, may retry: %v", key, bucket, err)
			return model.Blob{}, err
		}
		return model.Blob{Data: data, ContentType: info.ContentType}, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.InitialInterval
	bo.MaxElapsedTime = 0

	return backoff.RetryWithData(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.cfg.MaxRetries)), ctx))
}
