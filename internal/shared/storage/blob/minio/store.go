package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resume-uploads/internal/shared/storage/blob"
	"resume-uploads/internal/shared/telemetry"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// Store implements blob.Store on a MinIO (or any S3-compatible) server.
type Store struct {
	client *minio.Client
	bucket string
}

// New connects to the server and makes sure the bucket exists.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &Store{client: client, bucket: opts.Bucket}
	if err := s.ensureBucket(ctx, opts.Region); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		// Another instance may have created it between the two calls.
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	telemetry.Info("blob.bucket_created", map[string]any{"backend": "minio", "bucket": s.bucket})
	return nil
}

// Put sends If-None-Match so the server refuses to replace an existing object.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := blob.CheckKey(key); err != nil {
		return err
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	opts.SetMatchETagExcept("*")
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		if minio.ToErrorResponse(err).Code == "PreconditionFailed" {
			return blob.ErrExists
		}
		return fmt.Errorf("minio put object %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Open stats the object before handing it back so a missing key surfaces
// here instead of on the first Read.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := blob.CheckKey(key); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr("get", key, err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, s.mapErr("stat", key, err)
	}
	return obj, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := blob.CheckKey(key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("minio remove object %s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *Store) mapErr(op, key string, err error) error {
	if isNotFound(err) {
		return blob.ErrNotFound
	}
	return fmt.Errorf("minio %s object %s/%s: %w", op, s.bucket, key, err)
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchObject":
		return true
	}
	return false
}

var _ blob.Store = (*Store)(nil)
