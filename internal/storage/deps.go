package storage

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
)

type minioClient interface {
	StatObject(ctx context.Context, bucketName, fileKey string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// objectOpener streams an object body. *minio.Object cannot be built outside
// the minio package, so reads go through this seam.
type objectOpener func(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error)

func minioOpener(c *minio.Client) objectOpener {
	return func(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
		return c.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	}
}
