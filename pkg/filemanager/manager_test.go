package filemanager

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickerstreet/pkg/config"
	"stickerstreet/pkg/logger"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	body    string
	deleted []string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, f.err
}

func TestUpload(t *testing.T) {
	api := &fakeS3{}
	f := &file{logger: logger.Nop(), s3: api, bucket: "stickers", region: "eu-west-3"}

	url, err := f.Upload(context.Background(), strings.NewReader("png"), "products", "a.png", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "https://stickers.s3.eu-west-3.amazonaws.com/products/a.png", url)
	require.Len(t, api.puts, 1)
	assert.Equal(t, "products/a.png", aws.ToString(api.puts[0].Key))
	assert.Equal(t, "image/png", aws.ToString(api.puts[0].ContentType))
	assert.Equal(t, "png", api.body)

	require.NoError(t, f.Remove(context.Background(), "products", "a.png"))
	assert.Equal(t, []string{"products/a.png"}, api.deleted)

	api.err = errors.New("denied")
	_, err = f.Upload(context.Background(), strings.NewReader("png"), "products", "b.png", "")
	assert.Error(t, err)
}

func TestNotConfigured(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Set("aws_s3_bucket", "")

	f := New(Params{Logger: logger.Nop(), Config: cfg})

	_, err := f.Upload(context.Background(), strings.NewReader("x"), "d", "f", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
