// Package mirror copies optimized assets to a secondary destination: a
// local directory, an S3 bucket, a GCS bucket or an SFTP server.
package mirror

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// Backend names accepted by WriteImage.
const (
	BackendDir  = "dir"
	BackendS3   = "s3"
	BackendGCS  = "gcs"
	BackendSFTP = "sftp"
)

// Supported reports whether backendType names a known backend.
func Supported(backendType string) bool {
	switch backendType {
	case BackendDir, BackendS3, BackendGCS, BackendSFTP:
		return true
	}
	return false
}

// WriteImage streams reader to the backend named backendType. accessInfo
// carries the backend's credentials plus "filename", "folder" and
// "contentType" for the object being written.
func WriteImage(ctx context.Context, accessInfo map[string]string, reader io.Reader, backendType string) error {
	switch backendType {
	case BackendDir:
		if err := UploadToDir(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to copy to directory: %w", err)
		}
	case BackendS3:
		if err := UploadToS3WithCreds(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to S3: %w", err)
		}
	case BackendGCS:
		if err := UploadToGCSWithJSON(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to GCS: %w", err)
		}
	case BackendSFTP:
		if err := UploadToSFTPWithCreds(ctx, accessInfo, reader); err != nil {
			return fmt.Errorf("failed to upload to SFTP: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend type: %s", backendType)
	}
	return nil
}

// objectKey joins the optional folder prefix and the filename with
// forward slashes, as object stores and SFTP expect.
func objectKey(accessInfo map[string]string) string {
	return path.Join(accessInfo["folder"], accessInfo["filename"])
}

// Mirror copies the file at localPath to the configured backend and
// returns the destination it was written to.
func Mirror(ctx context.Context, backendType string, accessInfo map[string]string, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	info := make(map[string]string, len(accessInfo)+3)
	for k, v := range accessInfo {
		info[k] = v
	}
	info["filename"] = filepath.Base(localPath)

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to sniff %s: %w", localPath, err)
	}
	info["contentType"] = mtype.String()
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if err := WriteImage(ctx, info, f, backendType); err != nil {
		return "", err
	}
	return Destination(backendType, info), nil
}

// Destination describes where an object lands, for logs and history.
func Destination(backendType string, accessInfo map[string]string) string {
	key := objectKey(accessInfo)
	switch backendType {
	case BackendDir:
		return filepath.Join(accessInfo["baseDir"], filepath.FromSlash(key))
	case BackendS3:
		return fmt.Sprintf("s3://%s/%s", accessInfo["bucket"], key)
	case BackendGCS:
		return fmt.Sprintf("gs://%s/%s", accessInfo["bucket"], key)
	case BackendSFTP:
		return fmt.Sprintf("sftp://%s%s", accessInfo["host"], path.Join("/", accessInfo["remoteDir"], key))
	}
	return key
}
