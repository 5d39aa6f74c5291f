package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fhuszti/medias-display-go/internal/logger"
	"github.com/fhuszti/medias-display-go/internal/port"
	"github.com/fhuszti/medias-display-go/internal/usecase/media"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultMaxObjectBytes caps how much of a single object ReadFile keeps in memory.
const DefaultMaxObjectBytes int64 = 32 << 20

type MinioStorage struct {
	client   minioClient
	open     objectOpener
	maxBytes int64
}

type Option func(*MinioStorage)

// WithMaxObjectBytes makes ReadFile reject objects larger than n bytes.
// A non-positive n keeps DefaultMaxObjectBytes.
func WithMaxObjectBytes(n int64) Option {
	return func(s *MinioStorage) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// compile-time check: *MinioStorage must satisfy port.Storage
var _ port.Storage = (*MinioStorage)(nil)

func NewMinioStorage(endpoint, accessKey, secretKey string, useSSL bool, opts ...Option) (*MinioStorage, error) {
	logger.Info(context.Background(), "initialising minio client", "endpoint", endpoint, "ssl", useSSL)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	s := &MinioStorage{client: client, open: minioOpener(client), maxBytes: DefaultMaxObjectBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *MinioStorage) InitBucket(ctx context.Context, bucket string) error {
	ok, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return mapMinioErr(err)
	}
	if !ok {
		logger.Infof(ctx, "bucket %q does not exist, creating it...", bucket)
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return mapMinioErr(err)
		}
	}
	return nil
}

func (s *MinioStorage) FileExists(ctx context.Context, bucket, fileKey string) (bool, error) {
	logger.Debugf(ctx, "checking if file %q exists in bucket %q...", fileKey, bucket)

	_, err := s.StatFile(ctx, bucket, fileKey)
	if errors.Is(err, media.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *MinioStorage) StatFile(ctx context.Context, bucket, fileKey string) (port.FileInfo, error) {
	logger.Debugf(ctx, "getting stats on file %q in bucket %q...", fileKey, bucket)

	info, err := s.client.StatObject(ctx, bucket, fileKey, minio.StatObjectOptions{})
	if err != nil {
		return port.FileInfo{}, mapMinioErr(err)
	}
	return port.FileInfo{
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
	}, nil
}

// ReadFile loads a whole object in memory. The object is stat'ed first so that
// a missing key surfaces as media.ErrObjectNotFound, and an oversized one as
// media.ErrObjectTooLarge, before any body is opened.
func (s *MinioStorage) ReadFile(ctx context.Context, bucket, fileKey string) ([]byte, port.FileInfo, error) {
	logger.Debugf(ctx, "reading file %q from bucket %q...", fileKey, bucket)

	info, err := s.StatFile(ctx, bucket, fileKey)
	if err != nil {
		return nil, port.FileInfo{}, err
	}
	limit := s.limit()
	if info.SizeBytes > limit {
		return nil, port.FileInfo{}, fmt.Errorf("%w: %q is %d bytes, limit is %d", media.ErrObjectTooLarge, fileKey, info.SizeBytes, limit)
	}

	body, err := s.open(ctx, bucket, fileKey)
	if err != nil {
		return nil, port.FileInfo{}, mapMinioErr(err)
	}
	defer body.Close()

	// the body may have grown since the stat
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, port.FileInfo{}, mapMinioErr(err)
	}
	if int64(len(data)) > limit {
		return nil, port.FileInfo{}, fmt.Errorf("%w: %q exceeds %d bytes", media.ErrObjectTooLarge, fileKey, limit)
	}
	if info.SizeBytes > 0 && int64(len(data)) != info.SizeBytes {
		return nil, port.FileInfo{}, fmt.Errorf("%w: short read of %q: got %d of %d bytes", media.ErrInternal, fileKey, len(data), info.SizeBytes)
	}
	return data, info, nil
}

func (s *MinioStorage) limit() int64 {
	if s.maxBytes <= 0 {
		return DefaultMaxObjectBytes
	}
	return s.maxBytes
}

func (s *MinioStorage) SaveFile(ctx context.Context, bucket, fileKey string, reader io.Reader, fileSize int64, opts map[string]string) error {
	logger.Infof(ctx, "saving file %q into bucket %q...", fileKey, bucket)

	putOpts := minio.PutObjectOptions{}
	if ct := opts["Content-Type"]; ct != "" {
		putOpts.ContentType = ct
	}

	_, err := s.client.PutObject(ctx, bucket, fileKey, reader, fileSize, putOpts)
	if err != nil {
		return mapMinioErr(err)
	}
	return nil
}
