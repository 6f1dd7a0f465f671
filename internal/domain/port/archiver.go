package port

import "context"

type Archiver interface {
	CreateZip(ctx context.Context, filePaths []string, outputPath string) error
}
