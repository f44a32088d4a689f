// Package storage is the blob upload boundary used for post images.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jrsteele09/rockquest/api"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/rs/zerolog/log"
)

// ImageContentType is the content type post images are stored with.
const ImageContentType = "image/jpeg"

const anonymousOwner = "anon"

// Uploader stores a blob under path and returns a URL it can be downloaded from.
type Uploader interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
}

// PostImagePath returns the object key for a post image taken at now:
// posts/<uid>/<unix-ms>.jpg, with "anon" standing in for a missing uid.
func PostImagePath(uid string, now time.Time) string {
	if uid == "" {
		uid = anonymousOwner
	}
	return fmt.Sprintf("posts/%s/%d.jpg", uid, now.UnixMilli())
}

// IsRemote reports whether uri already points at a hosted image.
func IsRemote(uri string) bool {
	lower := strings.ToLower(strings.TrimSpace(uri))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ResolveImage turns the image a user picked into a URL the backend can
// store on a post. Remote URIs and the empty string are returned unchanged;
// local files are uploaded under PostImagePath.
func ResolveImage(ctx context.Context, u Uploader, uid, imageURI string, now time.Time) (string, error) {
	if imageURI == "" || IsRemote(imageURI) {
		return imageURI, nil
	}
	if u == nil {
		return "", fmt.Errorf("%w: no uploader configured for %s", rqerrors.ErrUnsupported, imageURI)
	}

	path, err := api.LocalPath(imageURI)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", rqerrors.Wrapf(err, "open image %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", rqerrors.Wrapf(err, "stat image %s", path)
	}

	key := PostImagePath(uid, now)
	url, err := u.Upload(ctx, key, f, info.Size(), ImageContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", rqerrors.ErrUploadFailed, key, err)
	}
	log.Debug().Str("key", key).Str("url", url).Msg("storage: uploaded post image")
	return url, nil
}
