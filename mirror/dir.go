package mirror

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"assetshrink/logger"
)

// UploadToDir writes reader to baseDir/folder/filename on the local file
// system, creating directories as needed.
func UploadToDir(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	baseDir := accessInfo["baseDir"]
	if baseDir == "" {
		return fmt.Errorf("missing required accessInfo key: baseDir")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath := filepath.Join(baseDir, filepath.FromSlash(objectKey(accessInfo)))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	if err := copyAndClose(file, reader, fullPath); err != nil {
		return err
	}

	logger.Debugf("copied '%s' to '%s'", accessInfo["filename"], fullPath)
	return nil
}

// copyAndClose writes reader to w and closes it. A failed Close is an
// error: for remote files it is where the last write is flushed.
func copyAndClose(w io.WriteCloser, reader io.Reader, name string) error {
	if _, err := io.Copy(w, reader); err != nil {
		w.Close()
		return fmt.Errorf("failed to write to %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return nil
}
