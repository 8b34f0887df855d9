package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sethvargo/go-retry"

	"speteval/internal/config"
	"speteval/internal/services"
)

const retryBase = 200 * time.Millisecond

// ObjectAPI is the subset of the S3 client used by S3.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads references as objects in a bucket.
type S3 struct {
	client     ObjectAPI
	bucket     string
	prefix     string
	maxRetries uint64
}

// NewS3 connects to the bucket described by cfg. An empty endpoint uses the
// AWS default for the region; set it for MinIO and other compatible servers.
func NewS3(cfg config.S3) (*S3, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "storage", "connect s3", "bucket is required", nil)
	}
	client := s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		// Retries happen once, in do, so the SDK's own retryer is disabled.
		o.Retryer = aws.NopRetryer{}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.AccessKeyID != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
		}
	})
	return NewS3WithClient(client, cfg.Bucket, cfg.Prefix, cfg.MaxRetries), nil
}

// NewS3WithClient wraps an existing client. Tests use it with a fake.
func NewS3WithClient(client ObjectAPI, bucket, prefix string, maxRetries int) *S3 {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &S3{
		client:     client,
		bucket:     bucket,
		prefix:     strings.Trim(prefix, "/"),
		maxRetries: uint64(maxRetries),
	}
}

func (s *S3) key(ref string) string {
	ref = strings.TrimLeft(ref, "/")
	if s.prefix == "" {
		return ref
	}
	return path.Join(s.prefix, ref)
}

// Exists issues a HEAD request for ref.
func (s *S3) Exists(ctx context.Context, ref string) (bool, error) {
	if ref == "" {
		return false, nil
	}
	key := s.key(ref)
	err := s.do(ctx, func(ctx context.Context) error {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Open downloads ref into memory. Audio clips in training sets are small
// enough that a seekable in-memory buffer is simpler than ranged reads.
func (s *S3) Open(ctx context.Context, ref string) (io.ReadSeekCloser, int64, error) {
	key := s.key(ref)
	var body []byte
	err := s.do(ctx, func(ctx context.Context) error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return err
		}
		defer out.Body.Close()
		data, err := io.ReadAll(out.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err))
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return nopCloser{bytes.NewReader(body)}, int64(len(body)), nil
}

// Describe returns the s3:// URL of ref.
func (s *S3) Describe(ref string) string {
	return "s3://" + s.bucket + "/" + s.key(ref)
}

// do runs op with retries. Missing objects and client errors are returned
// immediately; throttling, server errors and network failures are retried.
func (s *S3) do(ctx context.Context, op func(context.Context) error) error {
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewFibonacci(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if isNotFound(err) {
			return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
		}
		if shouldRetry(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	switch {
	case err == nil, errors.Is(err, fs.ErrNotExist), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", services.ErrTimeout, err)
	case shouldRetry(err):
		return fmt.Errorf("%w: %w", services.ErrTransient, err)
	}
	return err
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status interface{ HTTPStatusCode() int }
	if errors.As(err, &status) {
		code := status.HTTPStatusCode()
		return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorFault() == smithy.FaultServer
	}
	return true
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }
