package media_storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-ai/internal/application/service"
	"github.com/khoahotran/portfolio-ai/internal/config"
	"github.com/khoahotran/portfolio-ai/pkg/logger"
)

// s3API is the subset of the S3 client the adapter needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Adapter struct {
	client        s3API
	bucket        string
	folder        string
	publicBaseURL string
	log           logger.Logger
}

// NewS3Adapter works against AWS S3 and S3 compatible stores such as R2 or
// MinIO when an endpoint is configured.
func NewS3Adapter(ctx context.Context, cfg config.Config, log logger.Logger) (service.ResumeStorage, error) {
	if cfg.S3.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket has not config")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3.Region)}
	if cfg.S3.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		}
		o.UsePathStyle = cfg.S3.UsePathStyle
	})

	log.Info("S3 storage initialized", zap.String("bucket", cfg.S3.Bucket), zap.String("endpoint", cfg.S3.Endpoint))
	return newS3Adapter(client, cfg, log), nil
}

func newS3Adapter(client s3API, cfg config.Config, log logger.Logger) *s3Adapter {
	return &s3Adapter{
		client:        client,
		bucket:        cfg.S3.Bucket,
		folder:        cfg.Storage.Folder,
		publicBaseURL: strings.TrimSuffix(cfg.S3.PublicBaseURL, "/"),
		log:           log,
	}
}

func (a *s3Adapter) Upload(ctx context.Context, file io.Reader, key string, contentType string) (string, error) {
	objectKey := a.objectKey(key)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}
	return a.objectURL(objectKey), nil
}

func (a *s3Adapter) Delete(ctx context.Context, key string) error {
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (a *s3Adapter) objectKey(key string) string {
	key = strings.TrimPrefix(key, "/")
	if a.folder == "" {
		return key
	}
	return path.Join(a.folder, key)
}

// objectURL falls back to an s3:// location when the bucket has no public URL.
func (a *s3Adapter) objectURL(objectKey string) string {
	if a.publicBaseURL == "" {
		return fmt.Sprintf("s3://%s/%s", a.bucket, objectKey)
	}
	return a.publicBaseURL + "/" + objectKey
}
