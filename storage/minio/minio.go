// Package minio implements storage.Uploader on top of MinIO or any
// S3-compatible object store.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/rockquest/internal/config"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/storage"
	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

const (
	defaultPresignTTL = 24 * time.Hour
	// S3 refuses presigned URLs that live longer than a week.
	maxPresignTTL = 7 * 24 * time.Hour
)

var _ storage.Uploader = (*Uploader)(nil)

// Uploader writes objects to one bucket.
type Uploader struct {
	client        *mclient.Client
	bucket        string
	publicBaseURL string
	presignTTL    time.Duration
}

// New connects to the configured endpoint and fails fast when the bucket
// is missing. The endpoint may carry an http:// or https:// scheme, which
// selects TLS.
func New(ctx context.Context, cfg config.StorageConfig) (*Uploader, error) {
	const op = "storage/minio/New"

	endpoint := cfg.GetStorageEndpoint()
	if endpoint == "" {
		return nil, fmt.Errorf("%s: %w: no storage endpoint configured", op, rqerrors.ErrInvalidRequest)
	}
	secure := strings.HasPrefix(endpoint, "https://")
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.GetStorageAccessKey(), cfg.GetStorageSecretKey(), ""),
		Secure: secure,
		Region: cfg.GetStorageRegion(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bucket := cfg.GetStorageBucket()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w: bucket %q does not exist", op, rqerrors.ErrBucketNotFound, bucket)
	}

	ttl := cfg.GetStoragePresignTTL()
	switch {
	case ttl <= 0:
		ttl = defaultPresignTTL
	case ttl > maxPresignTTL:
		ttl = maxPresignTTL
	}

	return &Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(cfg.GetStoragePublicBaseURL(), "/"),
		presignTTL:    ttl,
	}, nil
}

// Upload stores r under path. The returned URL is public base URL + path
// when one is configured, otherwise a presigned GET URL.
func (u *Uploader) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	const op = "storage/minio/Upload"

	key := strings.TrimLeft(path, "/")
	if key == "" {
		return "", fmt.Errorf("%s: %w: empty object key", op, rqerrors.ErrInvalidRequest)
	}

	info, err := u.client.PutObject(ctx, u.bucket, key, r, size, mclient.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	log.Debug().Str("bucket", u.bucket).Str("key", key).Int64("size", info.Size).Msg("storage: object stored")

	return u.DownloadURL(ctx, key)
}

// DownloadURL returns the URL an object can be fetched from.
func (u *Uploader) DownloadURL(ctx context.Context, key string) (string, error) {
	const op = "storage/minio/DownloadURL"

	if u.publicBaseURL != "" {
		return u.publicBaseURL + "/" + key, nil
	}
	signed, err := u.client.PresignedGetObject(ctx, u.bucket, key, u.presignTTL, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed.String(), nil
}

// Exists reports whether key is stored in the bucket.
func (u *Uploader) Exists(ctx context.Context, key string) (bool, error) {
	const op = "storage/minio/Exists"

	_, err := u.client.StatObject(ctx, u.bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		errResp := mclient.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}
