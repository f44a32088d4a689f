package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/rockquest/dispatcher"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
)

const (
	// DefaultScanFilename is the filename sent when none is given.
	DefaultScanFilename = "scan.jpg"

	scanField       = "file"
	scanContentType = "image/jpeg"
)

// ScanRock uploads a JPEG photo for classification through the multipart
// dispatcher. A photo the classifier is not confident about is a 422
// *dispatcher.HTTPError (see LowConfidence).
func (c *Client) ScanRock(ctx context.Context, photo io.Reader, filename string) (ScanResult, error) {
	if filename == "" {
		filename = DefaultScanFilename
	}
	form := &dispatcher.Form{
		Files: []dispatcher.File{{
			Field:       scanField,
			Filename:    filename,
			ContentType: scanContentType,
			Content:     photo,
		}},
	}
	return call[ScanResult](ctx, c.form, &dispatcher.Request{Method: http.MethodPost, Path: RoutePlayerScanRock, Form: form})
}

// ScanRockFromURI scans the local file at uri, given as a file:// URI or a
// plain path.
func (c *Client) ScanRockFromURI(ctx context.Context, uri, filename string) (ScanResult, error) {
	path, err := LocalPath(uri)
	if err != nil {
		return ScanResult{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return ScanResult{}, rqerrors.Wrapf(err, "open scan %s", path)
	}
	defer f.Close()

	if filename == "" {
		filename = DefaultScanFilename
	}
	return c.ScanRock(ctx, f, filename)
}

// LocalPath converts a file:// URI or a plain path to a filesystem path.
func LocalPath(uri string) (string, error) {
	if !strings.Contains(uri, "://") {
		if uri == "" {
			return "", fmt.Errorf("%w: empty file uri", rqerrors.ErrInvalidRequest)
		}
		return filepath.Clean(uri), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", rqerrors.ErrInvalidRequest, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: %s uris are not local files", rqerrors.ErrUnsupported, u.Scheme)
	}
	return filepath.FromSlash(u.Path), nil
}
