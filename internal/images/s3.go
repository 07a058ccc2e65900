package images

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store uploads images to an S3 bucket. Objects must be publicly readable
// through the bucket policy for clients to load the returned URL.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// NewS3Store builds a client from the default AWS config chain
// (environment, shared config, instance role).
func NewS3Store(ctx context.Context, bucket, prefix string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return NewS3StoreFromClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3StoreFromClient uses an existing client.
func NewS3StoreFromClient(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

// Put uploads the image under prefix + key.
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*Stored, error) {
	objectKey := s.prefix + key
	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("error uploading to s3: %w", err)
	}
	return &Stored{Key: objectKey, URL: result.Location}, nil
}

// Delete removes the object. Deleting a missing key succeeds on S3.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("error deleting from s3: %w", err)
	}
	return nil
}
