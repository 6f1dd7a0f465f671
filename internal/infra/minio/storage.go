package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SourceScheme prefixes object-store video sources: s3://bucket/key.
const SourceScheme = "s3://"

type Storage struct {
	client        *miniogo.Client
	archiveBucket string
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	ArchiveBucket string
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Storage{
		client:        client,
		archiveBucket: cfg.ArchiveBucket,
	}, nil
}

// ParseSource splits an s3://bucket/key source. ok is false for anything
// else, including local paths.
func ParseSource(source string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(source, SourceScheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func (s *Storage) EnsureArchiveBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.archiveBucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.archiveBucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.archiveBucket, miniogo.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.archiveBucket, err)
		}
	}
	return nil
}

func (s *Storage) DownloadSource(ctx context.Context, bucket, objectKey, destPath string) error {
	if err := s.client.FGetObject(ctx, bucket, objectKey, destPath, miniogo.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s/%s: %w", bucket, objectKey, err)
	}
	return nil
}

func (s *Storage) UploadArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.archiveBucket, objectKey, reader, size, miniogo.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return fmt.Errorf("upload archive: %w", err)
	}
	return nil
}
