package images

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func fixedClock() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestLocalStore_PutAndLink(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	s.now = fixedClock

	ref, err := s.Put(context.Background(), pngHeader)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "file://"), ref)
	assert.Contains(t, ref, "/receipts/2024/06/01/")
	assert.True(t, strings.HasSuffix(ref, ".png"), ref)

	u, err := url.Parse(ref)
	require.NoError(t, err)
	data, err := os.ReadFile(u.Path)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	link, err := s.Link(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, ref, link)

	_, err = s.Link(context.Background(), "s3://b/k")
	require.Error(t, err)
}

func TestLocalStore_DistinctKeys(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	a, err := s.Put(context.Background(), pngHeader)
	require.NoError(t, err)
	b, err := s.Put(context.Background(), pngHeader)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func stubAWSConfig(t *testing.T) {
	t.Helper()
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })

	loadDefaultAWSConfig = func(ctx context.Context, _ ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{
			Region:      "us-east-1",
			Credentials: credentials.NewStaticCredentialsProvider("AK", "SK", ""),
		}, nil
	}
}

func TestS3Store_PutUploadsToBucket(t *testing.T) {
	stubAWSConfig(t)

	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewS3Store(context.Background(), S3Config{Bucket: "receipts-bkt", Region: "us-east-1", BaseEndpoint: srv.URL})
	require.NoError(t, err)
	s.now = fixedClock

	ref, err := s.Put(context.Background(), pngHeader)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "s3://receipts-bkt/receipts/2024/06/01/"), ref)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/receipts-bkt/"+strings.TrimPrefix(ref, "s3://receipts-bkt/"), path)
	assert.Contains(t, string(body), string(pngHeader))
}

func TestS3Store_PutError(t *testing.T) {
	stubAWSConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	s, err := NewS3Store(context.Background(), S3Config{Bucket: "b", Region: "us-east-1", BaseEndpoint: srv.URL})
	require.NoError(t, err)

	_, err = s.Put(context.Background(), pngHeader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload image")
}

func TestS3Store_Link(t *testing.T) {
	stubAWSConfig(t)

	s, err := NewS3Store(context.Background(), S3Config{Bucket: "b", Region: "us-east-1", BaseEndpoint: "http://minio.local:9000"})
	require.NoError(t, err)

	link, err := s.Link(context.Background(), "s3://b/receipts/2024/06/01/x.png")
	require.NoError(t, err)
	assert.Contains(t, link, "minio.local:9000/b/receipts/2024/06/01/x.png")
	assert.Contains(t, link, "X-Amz-Expires=900")

	for _, bad := range []string{"file:///x.png", "s3://", "s3://only-bucket"} {
		_, err := s.Link(context.Background(), bad)
		assert.Error(t, err, bad)
	}
}

func TestNewS3Store_Errors(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	require.Error(t, err)

	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(ctx context.Context, _ ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, assert.AnError
	}
	_, err = NewS3Store(context.Background(), S3Config{Bucket: "b"})
	require.ErrorIs(t, err, assert.AnError)
}
