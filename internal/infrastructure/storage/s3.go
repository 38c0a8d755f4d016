package storage

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	crerr "github.com/cockroachdb/errors"

	"github.com/astatracker/fantacalcio-api/internal/platform/logging"
	"github.com/astatracker/fantacalcio-api/internal/platform/resilience"
)

const defaultRequestTimeout = 20 * time.Second

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	ForcePathStyle  bool
	Timeout         time.Duration
	Logger          *logging.Logger
	CircuitBreaker  resilience.CircuitBreakerConfig
}

// S3ImageStore implements formation.ImageStore on any S3-compatible object
// store (AWS S3, Cloudflare R2, MinIO).
type S3ImageStore struct {
	client         *s3.Client
	bucket         string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewS3ImageStore(ctx context.Context, cfg S3Config) (*S3ImageStore, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, crerr.New("s3 image store bucket is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(strings.TrimSpace(cfg.Region)),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, crerr.Wrap(err, "load aws config for image store")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	return &S3ImageStore{
		client:         client,
		bucket:         bucket,
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

func (s *S3ImageStore) Put(ctx context.Context, key string, contentType string, body []byte) error {
	return s.withBreaker(ctx, "put", func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return crerr.Wrapf(err, "put object key=%s", key)
		}
		return nil
	})
}

func (s *S3ImageStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.withBreaker(ctx, "list", func(ctx context.Context) error {
		paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return crerr.Wrapf(err, "list objects prefix=%s", prefix)
			}
			for _, object := range page.Contents {
				if object.Key != nil {
					keys = append(keys, *object.Key)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.withBreaker(ctx, "delete", func(ctx context.Context) error {
		for _, key := range keys {
			_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			})
			if err != nil {
				return crerr.Wrapf(err, "delete object key=%s", key)
			}
		}
		return nil
	})
}

func (s *S3ImageStore) withBreaker(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if s.circuitEnabled {
		if err := s.breaker.Allow(); err != nil {
			return crerr.Wrapf(err, "image store %s rejected", op)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := fn(ctx)
	if s.circuitEnabled {
		if err != nil {
			s.breaker.RecordFailure()
		} else {
			s.breaker.RecordSuccess()
		}
	}
	if err != nil {
		s.logger.WarnContext(ctx, "image store operation failed",
			"operation", op,
			"bucket", s.bucket,
			"error", err,
		)
	}
	return err
}
