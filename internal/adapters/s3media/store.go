package s3media

// Package s3media stores media bytes in an S3-compatible bucket. Cloudflare
// R2 and MinIO both speak this API; only the endpoint differs.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/inkhouse/storyapi/internal/core"
	apperrors "github.com/inkhouse/storyapi/internal/errors"
)

var _ core.ObjectStore = (*Store)(nil)

// Config holds S3 connection settings.
type Config struct {
	Bucket       string
	Region       string
	Endpoint     string // set for R2/MinIO; empty for AWS proper
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// Store implements core.ObjectStore on an S3 bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// New creates a Store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3media: bucket is required")
	}

	var awsCfg aws.Config
	var err error
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey, cfg.SecretKey, "")),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Put uploads an object and returns its size in bytes.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string) (int64, error) {
	// S3 needs a seekable body for signing; buffer the upload.
	data, err := io.ReadAll(body)
	if err != nil {
		return 0, fmt.Errorf("read upload body: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return 0, apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "put object %s", key)
	}
	return int64(len(data)), nil
}

// Get reads an object, passing an optional Range header value straight
// through so partial video reads stay partial.
func (s *Store) Get(ctx context.Context, key, byteRange string) (*core.ObjectRange, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if byteRange != "" {
		input.Range = aws.String(byteRange)
	}

	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "get object %s", key)
	}

	rng := &core.ObjectRange{
		Body:        out.Body,
		ContentType: aws.ToString(out.ContentType),
	}
	if out.ContentLength != nil {
		rng.ContentLength = *out.ContentLength
	}
	if out.ContentRange != nil {
		rng.ContentRange = *out.ContentRange
	}
	return rng, nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeUpstream, "delete object %s", key)
	}
	return nil
}
