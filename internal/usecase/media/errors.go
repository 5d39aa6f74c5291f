package media

import "errors"

var (
	ErrObjectNotFound = errors.New("storage: object not found")
	ErrBucketNotFound = errors.New("storage: bucket not found")
	ErrUnauthorized   = errors.New("storage: unauthorized")
	ErrInternal       = errors.New("storage: internal error")
	ErrObjectTooLarge = errors.New("storage: object too large")

	ErrMediaNotReady    = errors.New("media: not ready for display")
	ErrNotAnImage       = errors.New("media: not displayable as an image")
	ErrFetchFailed      = errors.New("media: fetch failed")
	ErrThumbnailMissing = errors.New("media: thumbnail missing")
)
