package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/portfolio-content/pkg/portfolio"
)

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{Region: "us-east-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket name is required")
}

func TestNewDefaults(t *testing.T) {
	backend, err := New(context.Background(), Config{
		Bucket:          "test-bucket",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", backend.config.Region)
	assert.Equal(t, "test-bucket", backend.bucket)
}

func TestApplySSE(t *testing.T) {
	b := &Backend{config: Config{EnableSSE: true, SSEAlgorithm: "aws:kms", SSEKMSKeyID: "key-1"}}
	input := &s3.PutObjectInput{}
	b.applySSE(input)
	assert.Equal(t, types.ServerSideEncryptionAwsKms, input.ServerSideEncryption)
	assert.Equal(t, "key-1", *input.SSEKMSKeyId)

	plain := &Backend{}
	input = &s3.PutObjectInput{}
	plain.applySSE(input)
	assert.Empty(t, input.ServerSideEncryption)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NotFound"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))

	err := mapErr("stat", "k", &types.NoSuchKey{})
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}

// TestS3Integration runs against a live S3-compatible endpoint such as MinIO.
func TestS3Integration(t *testing.T) {
	endpoint := os.Getenv("TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("TEST_S3_ENDPOINT not set")
	}
	ctx := context.Background()
	backend, err := New(ctx, Config{
		Bucket:                 "portfolio-test",
		Endpoint:               endpoint,
		AccessKeyID:            os.Getenv("TEST_S3_ACCESS_KEY_ID"),
		SecretAccessKey:        os.Getenv("TEST_S3_SECRET_ACCESS_KEY"),
		UsePathStyle:           true,
		CreateBucketIfNotExist: true,
	})
	require.NoError(t, err)

	key := "test-" + uuid.NewString() + ".txt"
	require.NoError(t, backend.Upload(ctx, portfolio.UploadParams{ObjectKey: key, MimeType: "text/plain"}, bytes.NewReader([]byte("hello"))))

	meta, err := backend.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.Size)
	assert.Equal(t, "text/plain", meta.ContentType)

	rc, err := backend.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, backend.Delete(ctx, key))
	_, err = backend.GetObjectMeta(ctx, key)
	assert.ErrorIs(t, err, portfolio.ErrNotFound)
}
