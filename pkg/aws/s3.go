package aws

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// NewS3Client creates an S3 client. A non-empty endpoint switches to
// path-style addressing for LocalStack.
func NewS3Client(cfg sdkaws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
			o.BaseEndpoint = sdkaws.String(endpoint)
		}
	})
}

// S3BlobStore stores product images in a bucket and hands out public URLs.
type S3BlobStore struct {
	client    *s3.Client
	uploader  *manager.Uploader
	bucket    string
	endpoint  string
	cdnDomain string
}

func NewS3BlobStore(client *s3.Client, bucket, endpoint, cdnDomain string) *S3BlobStore {
	return &S3BlobStore{
		client:    client,
		uploader:  manager.NewUploader(client),
		bucket:    bucket,
		endpoint:  endpoint,
		cdnDomain: cdnDomain,
	}
}

// Upload writes data under key and returns its public URL.
func (b *S3BlobStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(b.bucket),
		Key:         sdkaws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}
	return b.PublicURL(key), nil
}

func (b *S3BlobStore) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(b.bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3 object %s: %w", key, err)
	}
	return nil
}

// PublicURL prefers the CDN domain, then the custom endpoint, then the
// virtual-hosted S3 URL.
func (b *S3BlobStore) PublicURL(key string) string {
	switch {
	case b.cdnDomain != "":
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(b.cdnDomain, "/"), key)
	case b.endpoint != "":
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(b.endpoint, "/"), b.bucket, key)
	default:
		return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", b.bucket, key)
	}
}
