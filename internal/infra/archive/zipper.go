package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
)

type ZipCreator struct {
	prefix string
}

// NewZipCreator returns an archiver that stores every file under prefix/
// inside the zip. JPEG stills are already compressed, so entries are
// stored rather than deflated.
func NewZipCreator(prefix string) *ZipCreator {
	return &ZipCreator{prefix: prefix}
}

func (z *ZipCreator) CreateZip(ctx context.Context, filePaths []string, outputPath string) (err error) {
	zipFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create zip file: %w", err)
	}
	defer func() {
		if cerr := zipFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(zipFile)
	seen := make(map[string]bool, len(filePaths))
	for _, fp := range filePaths {
		select {
		case <-ctx.Done():
			zw.Close()
			return ctx.Err()
		default:
		}

		name := path.Join(z.prefix, filepath.Base(fp))
		if seen[name] {
			zw.Close()
			return fmt.Errorf("duplicate entry %s", name)
		}
		seen[name] = true

		if err := addFile(zw, fp, name); err != nil {
			zw.Close()
			return fmt.Errorf("add %s to zip: %w", fp, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, filename, name string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Store

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, file)
	return err
}
