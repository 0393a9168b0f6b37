package filemanager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
)

var Module = fx.Provide(New)

var ErrNotConfigured = errors.New("s3 storage is not configured")

type File interface {
	// Upload stores body under dir/filename and returns its public URL.
	Upload(ctx context.Context, body io.Reader, dir, filename, contentType string) (string, error)
	Remove(ctx context.Context, dir, filename string) error
}

type Params struct {
	fx.In

	Logger logger.Logger
	Config config.IConfig
}

// objectAPI is the subset of the S3 client in use.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type file struct {
	logger logger.Logger
	s3     objectAPI
	bucket string
	region string
	err    error
}

func New(p Params) File {
	f := &file{
		logger: p.Logger,
		bucket: p.Config.GetString("aws_s3_bucket"),
		region: p.Config.GetString("aws_region"),
	}

	accessKey := p.Config.GetString("aws_access_key_id")
	secretKey := p.Config.GetString("aws_secret_access_key")
	if f.bucket == "" || f.region == "" || accessKey == "" || secretKey == "" {
		f.err = ErrNotConfigured
		return f
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(f.region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		f.err = fmt.Errorf("load aws config: %w", err)
		return f
	}

	f.s3 = s3.NewFromConfig(awsCfg)
	return f
}

func (f *file) key(dir, filename string) string {
	return path.Join(dir, filename)
}

func (f *file) Upload(ctx context.Context, body io.Reader, dir, filename, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	key := f.key(dir, filename)
	input := &s3.PutObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := f.s3.PutObject(ctx, input); err != nil {
		f.logger.Error(ctx, "->s3.PutObject", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", f.bucket, f.region, key), nil
}

func (f *file) Remove(ctx context.Context, dir, filename string) error {
	if f.err != nil {
		return f.err
	}

	_, err := f.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(dir, filename)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}
