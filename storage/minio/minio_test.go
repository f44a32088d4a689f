package minio_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/storage"
	"github.com/jrsteele09/rockquest/storage/minio"
	"github.com/stretchr/testify/require"
)

type storageConfig struct {
	endpoint, bucket, accessKey, secretKey, region, publicURL string
	ttl                                                       time.Duration
}

func (c storageConfig) GetStorageEndpoint() string          { return c.endpoint }
func (c storageConfig) GetStorageBucket() string            { return c.bucket }
func (c storageConfig) GetStorageAccessKey() string         { return c.accessKey }
func (c storageConfig) GetStorageSecretKey() string         { return c.secretKey }
func (c storageConfig) GetStorageRegion() string            { return c.region }
func (c storageConfig) GetStoragePublicBaseURL() string     { return c.publicURL }
func (c storageConfig) GetStoragePresignTTL() time.Duration { return c.ttl }

type putRecord struct {
	path        string
	contentType string
}

// fakeS3 answers the few S3 calls the uploader makes for a single bucket.
type fakeS3 struct {
	*httptest.Server
	bucket string

	lock sync.Mutex
	puts []putRecord
}

func newFakeS3(t *testing.T, bucket string) *fakeS3 {
	t.Helper()
	f := &fakeS3{bucket: bucket}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(strings.Trim(r.URL.Path, "/"), "/", 2)
		if parts[0] != f.bucket {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if len(parts) == 1 {
			if _, ok := r.URL.Query()["location"]; ok {
				w.Header().Set("Content-Type", "application/xml")
				_, _ = io.WriteString(w, `<LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}

		switch r.Method {
		case http.MethodPut:
			_, _ = io.Copy(io.Discard, r.Body)
			f.lock.Lock()
			f.puts = append(f.puts, putRecord{path: parts[1], contentType: r.Header.Get("Content-Type")})
			f.lock.Unlock()
			w.Header().Set("ETag", `"0123456789abcdef"`)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeS3) recorded() []putRecord {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]putRecord(nil), f.puts...)
}

func testConfig(endpoint string) storageConfig {
	return storageConfig{
		endpoint:  endpoint,
		bucket:    "rocks",
		accessKey: "access",
		secretKey: "secret-secret",
		region:    "us-east-1",
	}
}

func TestNew_Errors(t *testing.T) {
	s3 := newFakeS3(t, "rocks")
	ctx := context.Background()

	t.Run("no endpoint", func(t *testing.T) {
		_, err := minio.New(ctx, testConfig(""))
		require.ErrorIs(t, err, rqerrors.ErrInvalidRequest)
	})

	t.Run("missing bucket", func(t *testing.T) {
		cfg := testConfig(s3.URL)
		cfg.bucket = "other"
		_, err := minio.New(ctx, cfg)
		require.ErrorIs(t, err, rqerrors.ErrBucketNotFound)
		require.Contains(t, err.Error(), `bucket "other" does not exist`)
	})
}

func TestUpload_PublicURL(t *testing.T) {
	s3 := newFakeS3(t, "rocks")
	cfg := testConfig(s3.URL)
	cfg.publicURL = "https://cdn.example.com/rocks/"

	u, err := minio.New(context.Background(), cfg)
	require.NoError(t, err)

	data := []byte("jpeg-bytes")
	got, err := u.Upload(context.Background(), "posts/uid-1/1714557600000.jpg", bytes.NewReader(data), int64(len(data)), storage.ImageContentType)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/rocks/posts/uid-1/1714557600000.jpg", got)

	puts := s3.recorded()
	require.Len(t, puts, 1)
	require.Equal(t, "posts/uid-1/1714557600000.jpg", puts[0].path)
	require.Equal(t, storage.ImageContentType, puts[0].contentType)
}

func TestUpload_PresignedURL(t *testing.T) {
	s3 := newFakeS3(t, "rocks")
	cfg := testConfig(s3.URL)
	cfg.ttl = time.Hour

	u, err := minio.New(context.Background(), cfg)
	require.NoError(t, err)

	data := []byte("jpeg-bytes")
	got, err := u.Upload(context.Background(), "/posts/anon/1.jpg", bytes.NewReader(data), int64(len(data)), storage.ImageContentType)
	require.NoError(t, err)

	signed, err := url.Parse(got)
	require.NoError(t, err)
	require.Equal(t, "/rocks/posts/anon/1.jpg", signed.Path)
	require.Equal(t, "3600", signed.Query().Get("X-Amz-Expires"))
	require.NotEmpty(t, signed.Query().Get("X-Amz-Signature"))
}

func TestUpload_EmptyKey(t *testing.T) {
	s3 := newFakeS3(t, "rocks")
	u, err := minio.New(context.Background(), testConfig(s3.URL))
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), "/", bytes.NewReader(nil), 0, storage.ImageContentType)
	require.ErrorIs(t, err, rqerrors.ErrInvalidRequest)
	require.Empty(t, s3.recorded())
}
