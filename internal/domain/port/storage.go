package port

import (
	"context"
	"io"
)

type SourceStorage interface {
	DownloadSource(ctx context.Context, bucket, objectKey, destPath string) error
	UploadArchive(ctx context.Context, objectKey string, reader io.Reader, size int64) error
}
