package libs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"spooky-styles/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads to a bucket and, when configured, serves objects through
// a CloudFront distribution in front of it.
type S3Store struct {
	client           s3API
	bucket           string
	region           string
	prefix           string
	cloudFrontDomain string
}

func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3_BUCKET is not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return newS3Store(s3.NewFromConfig(awsCfg), cfg), nil
}

func newS3Store(client s3API, cfg config.S3Config) *S3Store {
	return &S3Store{
		client:           client,
		bucket:           cfg.Bucket,
		region:           cfg.Region,
		prefix:           strings.Trim(cfg.Prefix, "/"),
		cloudFrontDomain: strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(cfg.CloudFrontDomain, "https://"), "http://"), "/"),
	}
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// PublicURL is the CloudFront URL when a distribution is set, otherwise the
// virtual-hosted S3 URL.
func (s *S3Store) PublicURL(key string) string {
	if s.cloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cloudFrontDomain, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func (s *S3Store) Upload(ctx context.Context, file io.Reader, filename, contentType string) (*UploadResult, error) {
	key := s.key(objectName(filename))

	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         file,
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload to s3: %w", err)
	}

	return &UploadResult{URL: s.PublicURL(key), ID: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}
