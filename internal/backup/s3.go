package backup

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Uploader covers the S3 operation the exporter uses (allows mocking).
type S3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client creates an S3 client from the default AWS configuration.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ExportToS3 streams an encrypted snapshot of the user's records to the
// bucket and returns the object key. The snapshot is piped into the upload
// so it is never buffered whole in memory.
func (e *Exporter) ExportToS3(ctx context.Context, client S3Uploader, bucket, userID string) (string, error) {
	objectKey := fmt.Sprintf("backups/%s/%s-%s.snap",
		userID, time.Now().UTC().Format("20060102T150405Z"), uuid.NewString())

	pr, pw := io.Pipe()
	uploadErr := make(chan error, 1)
	go func() {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(objectKey),
			Body:   pr,
		})
		// Unblock the writer if the upload dies mid-stream.
		pr.CloseWithError(err)
		uploadErr <- err
	}()

	exportErr := e.Export(ctx, userID, pw)
	pw.CloseWithError(exportErr)

	if err := <-uploadErr; err != nil {
		return "", fmt.Errorf("uploading snapshot to s3://%s/%s: %w", bucket, objectKey, err)
	}
	if exportErr != nil {
		return "", exportErr
	}
	return objectKey, nil
}
