package storage

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-analysis/internal/platform/logging"
	"github.com/riskibarqy/match-analysis/internal/platform/resilience"
	"github.com/riskibarqy/match-analysis/internal/usecase"
)

type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UsePathStyle    bool
	Timeout         time.Duration
	Circuit         resilience.CircuitBreakerConfig
}

// objectAPI is the slice of the S3 client used by the uploader.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Uploader stores lineup images in an S3 compatible bucket.
type S3Uploader struct {
	client        objectAPI
	bucket        string
	publicBaseURL string
	timeout       time.Duration
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewS3Uploader(ctx context.Context, cfg Config, logger *logging.Logger) (*S3Uploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, crerr.New("storage bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(strings.TrimSpace(cfg.Region)),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, crerr.Wrap(err, "load aws config for storage")
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Uploader(client, cfg, logger), nil
}

func newS3Uploader(client objectAPI, cfg Config, logger *logging.Logger) *S3Uploader {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &S3Uploader{
		client:        client,
		bucket:        strings.TrimSpace(cfg.Bucket),
		publicBaseURL: publicBaseURL(cfg),
		timeout:       timeout,
		breaker:       resilience.NewFromConfig(cfg.Circuit),
		logger:        logger,
	}
}

func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", crerr.New("object key is required")
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}

	err := u.call(ctx, func(ctx context.Context) error {
		_, err := u.client.PutObject(ctx, input)
		return err
	})
	if err != nil {
		return "", u.unavailable(ctx, "upload", key, err)
	}

	u.logger.InfoContext(ctx, "lineup image stored", "bucket", u.bucket, "key", key, "size", size)
	return u.PublicURL(key), nil
}

func (u *S3Uploader) Delete(ctx context.Context, key string) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return nil
	}

	err := u.call(ctx, func(ctx context.Context) error {
		_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(u.bucket),
			Key:    aws.String(key),
		})
		return err
	})
	if err != nil {
		return u.unavailable(ctx, "delete", key, err)
	}
	return nil
}

// PublicURL joins the public base with the escaped object key.
func (u *S3Uploader) PublicURL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return u.publicBaseURL + "/" + strings.Join(segments, "/")
}

func (u *S3Uploader) call(ctx context.Context, fn func(context.Context) error) error {
	return u.breaker.Execute(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, u.timeout)
		defer cancel()
		return fn(ctx)
	})
}

func (u *S3Uploader) unavailable(ctx context.Context, op, key string, err error) error {
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		u.logger.WarnContext(ctx, "storage circuit breaker rejected request", "op", op, "state", u.breaker.State())
	} else {
		u.logger.WarnContext(ctx, "storage request failed", "op", op, "bucket", u.bucket, "key", key, "error", err)
	}
	return fmt.Errorf("%w: storage %s: %v", usecase.ErrDependencyUnavailable, op, err)
}

func publicBaseURL(cfg Config) string {
	if base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"); base != "" {
		return base
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"); endpoint != "" {
		return endpoint + "/" + bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, strings.TrimSpace(cfg.Region))
}
