package mirror

import (
	"context"
	"fmt"
	"io"

	"assetshrink/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadToS3WithCreds uploads content from an io.Reader to an S3 object
// using static credentials. An "endpoint" key points the client at an
// S3-compatible store (R2, MinIO) with path-style addressing.
func UploadToS3WithCreds(ctx context.Context, accessInfo map[string]string, reader io.Reader) error {
	bucket := accessInfo["bucket"]
	if bucket == "" {
		return fmt.Errorf("missing required accessInfo key: bucket")
	}
	key := objectKey(accessInfo)

	creds := credentials.NewStaticCredentialsProvider(accessInfo["accessKey"], accessInfo["secretKey"], "")
	s3Client := s3.New(s3.Options{
		Region:      accessInfo["region"],
		Credentials: creds,
	}, func(o *s3.Options) {
		if endpoint := accessInfo["endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   reader,
	}
	if ct := accessInfo["contentType"]; ct != "" {
		input.ContentType = aws.String(ct)
	}

	uploader := manager.NewUploader(s3Client)
	if _, err := uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, bucket, err)
	}

	logger.Debugf("uploaded object '%s' to bucket '%s'", key, bucket)
	return nil
}
