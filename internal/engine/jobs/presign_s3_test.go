package jobs

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3PresignerPut(t *testing.T) {
	ctx := context.Background()
	p, err := NewS3Presigner(ctx, S3Config{
		Bucket:          "recipes",
		Prefix:          "/incoming/",
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		ForcePathStyle:  true,
	})
	require.NoError(t, err)

	expires := time.Now().Add(10 * time.Minute)
	h, err := p.PresignPut(ctx, "abc/clip.mp4", 2048, expires)
	require.NoError(t, err)

	assert.Equal(t, "PUT", h.Method)
	assert.Equal(t, expires, h.ExpiresAt)
	u, err := url.Parse(h.URL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/recipes/incoming/abc/clip.mp4", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "AKIDEXAMPLE/"))
	assert.Equal(t, "2048", h.Headers["Content-Length"])
}

func TestS3PresignerNeedsBucket(t *testing.T) {
	_, err := NewS3Presigner(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestCreateUploadWithS3Presigner(t *testing.T) {
	ctx := context.Background()
	p, err := NewS3Presigner(ctx, S3Config{
		Bucket:          "recipes",
		Region:          "eu-west-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	u := NewUploads(NewMemoryStore(), p)
	up, err := u.CreateUpload(ctx, Descriptor{SourceType: SourceFile, Filename: "pasta.mp4", SizeBytes: 10})
	require.NoError(t, err)
	assert.Contains(t, up.StorageHandoff.URL, "recipes")
	assert.Contains(t, up.StorageHandoff.URL, up.UploadID+"/pasta.mp4")
	assert.True(t, up.StorageHandoff.ExpiresAt.After(time.Now()))
}
