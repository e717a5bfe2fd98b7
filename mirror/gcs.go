package mirror

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"assetshrink/logger"
)

// UploadToGCSWithJSON uploads content from an io.Reader to a Google Cloud
// Storage object. credentialsJSON holds a service account key, either raw
// or base64 encoded; when empty the default credentials chain is used.
func UploadToGCSWithJSON(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	bucketName := accessInfo["bucket"]
	if bucketName == "" {
		return fmt.Errorf("missing required accessInfo key: bucket")
	}
	objectName := objectKey(accessInfo)

	var opts []option.ClientOption
	if raw := accessInfo["credentialsJSON"]; raw != "" {
		opts = append(opts, option.WithCredentialsJSON(decodeMaybeBase64(raw)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = accessInfo["contentType"]

	if _, err = io.Copy(wc, reader); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	// Close completes the upload.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Debugf("uploaded object '%s' to bucket '%s'", objectName, bucketName)
	return nil
}

// decodeMaybeBase64 returns the decoded bytes when s is valid base64 and
// s itself otherwise.
func decodeMaybeBase64(s string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded
	}
	return []byte(s)
}
