package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioAPI is the part of *minio.Client used by MinioStore. GetObject
// returns an io.ReadCloser so tests can fake it.
type minioAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, object string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

type minioClient struct {
	*minio.Client
}

func (c minioClient) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return c.Client.GetObject(ctx, bucket, object, opts)
}

var newMinioClient = func(endpoint string, opts *minio.Options) (minioAPI, error) {
	c, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, err
	}
	return minioClient{c}, nil
}

// MinioStore keeps blobs in a MinIO (or other S3-compatible) bucket.
type MinioStore struct {
	client minioAPI
	bucket string
}

// NewMinioStore connects to opts.BaseEndpoint (an http or https URL) and
// creates the bucket when it does not exist.
func NewMinioStore(ctx context.Context, opts S3Options) (*MinioStore, error) {
	u, err := url.Parse(opts.BaseEndpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid minio endpoint %q", opts.BaseEndpoint)
	}

	client, err := newMinioClient(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: u.Scheme == "https",
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: opts.Bucket}, nil
}

func (s *MinioStore) Put(ctx context.Context, name string, r io.Reader, limit int64) (int64, error) {
	if err := checkName(name); err != nil {
		return 0, err
	}

	f, n, cleanup, err := spool(r, limit)
	if err != nil {
		return n, err
	}
	defer cleanup()

	if _, err := s.client.PutObject(ctx, s.bucket, name, f, n, minio.PutObjectOptions{}); err != nil {
		return n, fmt.Errorf("minio put %s: %w", name, err)
	}
	return n, nil
}

func (s *MinioStore) Open(ctx context.Context, name string) (*Blob, error) {
	if !ValidName(name) {
		return nil, common.ErrorNotFound
	}
	info, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("minio stat %s: %w", name, err)
	}
	rc, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		if isMinioNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("minio get %s: %w", name, err)
	}
	return &Blob{Reader: rc, Size: info.Size, ModTime: info.LastModified}, nil
}

func (s *MinioStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
	if err != nil && !isMinioNotFound(err) {
		return fmt.Errorf("minio delete %s: %w", name, err)
	}
	return nil
}

func (s *MinioStore) List(ctx context.Context) ([]BlobInfo, error) {
	var out []BlobInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio list: %w", obj.Err)
		}
		out = append(out, BlobInfo{Name: obj.Key, Size: obj.Size, ModTime: obj.LastModified})
	}
	return out, nil
}

func isMinioNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}
