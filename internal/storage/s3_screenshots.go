package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"igmetrics/internal/models"
	"igmetrics/internal/providers"
	"igmetrics/internal/structures"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	screenshotPrefix  = "screenshots/"
	defaultPresignTTL = time.Hour
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ScreenshotStore keeps screenshots in an S3-compatible bucket.
type S3ScreenshotStore struct {
	client     s3API
	presign    func(ctx context.Context, key string, ttl time.Duration) (string, error)
	bucket     string
	publicURL  string
	presignTTL time.Duration
	logger     providers.Logger
}

func NewS3ScreenshotStore(ctx context.Context, conf structures.ScreenshotConfig, logger providers.Logger) (*S3ScreenshotStore, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(conf.Region)}
	if conf.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.AccessKey,
			conf.SecretKey,
			"",
		)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})
	presignClient := s3.NewPresignClient(client)

	store := newS3ScreenshotStore(client, conf, logger)
	store.presign = func(ctx context.Context, key string, ttl time.Duration) (string, error) {
		req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(conf.Bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return "", err
		}
		return req.URL, nil
	}

	logger.Infof(providers.TypeApp, "Screenshot storage initialized, bucket %s", conf.Bucket)
	return store, nil
}

func newS3ScreenshotStore(client s3API, conf structures.ScreenshotConfig, logger providers.Logger) *S3ScreenshotStore {
	ttl := conf.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	return &S3ScreenshotStore{
		client:     client,
		bucket:     conf.Bucket,
		publicURL:  strings.TrimSuffix(conf.PublicURL, "/"),
		presignTTL: ttl,
		logger:     logger,
	}
}

func (s *S3ScreenshotStore) Put(ctx context.Context, username string, data []byte, contentType string) (string, error) {
	ref := screenshotKey(username, contentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(screenshotPrefix + ref),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store screenshot: %w", err)
	}

	s.logger.Debugf(providers.TypeAnalysis, "Stored screenshot %s (%d bytes)", ref, len(data))
	return ref, nil
}

func (s *S3ScreenshotStore) Get(ctx context.Context, ref string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(screenshotPrefix + ref),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: screenshot %s", models.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("failed to get screenshot: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	return io.ReadAll(out.Body)
}

// URL returns a public link when a public base URL is configured, a
// presigned GET otherwise.
func (s *S3ScreenshotStore) URL(ctx context.Context, ref string) (string, error) {
	if s.publicURL != "" {
		return s.publicURL + "/" + screenshotPrefix + ref, nil
	}
	if s.presign == nil {
		return "", errors.New("presigning is not configured")
	}
	url, err := s.presign(ctx, screenshotPrefix+ref, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}

func (s *S3ScreenshotStore) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(screenshotPrefix + ref),
	})
	if err != nil {
		return fmt.Errorf("failed to delete screenshot: %w", err)
	}
	return nil
}
