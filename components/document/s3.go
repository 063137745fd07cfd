package document

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of s3 client used by S3 source
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// S3Config of a s3 client
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Endpoint custom endpoint for s3 compatible storages (minio, r2...)
	Endpoint string
}

// NewS3Client returns a s3 client with static credentials
func NewS3Client(cfg S3Config) *s3.Client {
	awsCfg := aws.Config{
		Region: cfg.Region,
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
				Source:          "careerchat",
			}, nil
		}))
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// S3 is a s3 object document source
type S3 struct {
	bucket string
	key    string
	client S3API
}

var _ Source = (*S3)(nil)

type S3Option func(*S3)

func WithS3Bucket(bucket string) S3Option {
	return func(s *S3) {
		s.bucket = bucket
	}
}

func WithS3Key(key string) S3Option {
	return func(s *S3) {
		s.key = key
	}
}

func WithS3Client(clt S3API) S3Option {
	return func(s *S3) {
		s.client = clt
	}
}

// NewS3 creates a new S3 source instance.
func NewS3(opts ...S3Option) *S3 {
	ret := new(S3)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (s *S3) Load(ctx context.Context) (*Document, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer resp.Body.Close()
	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object from S3: %w", err)
	}
	meta := map[string]string{
		"source": "s3",
		"bucket": s.bucket,
		"key":    s.key,
	}
	if resp.ContentType != nil {
		meta["content_type"] = *resp.ContentType
	}
	return NewDocument(bs, meta), nil
}
