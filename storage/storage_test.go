package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/jrsteele09/rockquest/storage"
	"github.com/jrsteele09/rockquest/storage/storagefake"
	"github.com/stretchr/testify/require"
)

var takenAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestPostImagePath(t *testing.T) {
	require.Equal(t, "posts/uid-1/1714557600000.jpg", storage.PostImagePath("uid-1", takenAt))
	require.Equal(t, "posts/anon/1714557600000.jpg", storage.PostImagePath("", takenAt))
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"https://cdn.example.com/a.jpg", true},
		{"HTTP://cdn.example.com/a.jpg", true},
		{"file:///tmp/a.jpg", false},
		{"/tmp/a.jpg", false},
		{"", false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, storage.IsRemote(tt.uri), tt.uri)
	}
}

func writeImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "rock.jpg")
	require.NoError(t, os.WriteFile(p, []byte("jpeg-bytes"), 0o600))
	return p
}

func TestResolveImage_UploadsLocalFile(t *testing.T) {
	up := storagefake.NewMemoryUploader("https://blobs.example.com/")
	p := writeImage(t)

	for _, uri := range []string{p, "file://" + filepath.ToSlash(p)} {
		url, err := storage.ResolveImage(context.Background(), up, "uid-1", uri, takenAt)
		require.NoError(t, err)
		require.Equal(t, "https://blobs.example.com/posts/uid-1/1714557600000.jpg", url)
	}

	obj, ok := up.Get("posts/uid-1/1714557600000.jpg")
	require.True(t, ok)
	require.Equal(t, []byte("jpeg-bytes"), obj.Data)
	require.Equal(t, storage.ImageContentType, obj.ContentType)
}

func TestResolveImage_PassThrough(t *testing.T) {
	up := storagefake.NewMemoryUploader("https://blobs.example.com")

	url, err := storage.ResolveImage(context.Background(), up, "uid-1", "https://cdn.example.com/a.jpg", takenAt)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/a.jpg", url)

	url, err = storage.ResolveImage(context.Background(), nil, "uid-1", "", takenAt)
	require.NoError(t, err)
	require.Empty(t, url)

	require.Empty(t, up.Keys())
}

func TestResolveImage_Errors(t *testing.T) {
	ctx := context.Background()
	p := writeImage(t)

	t.Run("no uploader", func(t *testing.T) {
		_, err := storage.ResolveImage(ctx, nil, "uid-1", p, takenAt)
		require.ErrorIs(t, err, rqerrors.ErrUnsupported)
	})

	t.Run("missing file", func(t *testing.T) {
		up := storagefake.NewMemoryUploader("https://blobs.example.com")
		_, err := storage.ResolveImage(ctx, up, "uid-1", filepath.Join(t.TempDir(), "gone.jpg"), takenAt)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		up := storagefake.NewMemoryUploader("https://blobs.example.com")
		_, err := storage.ResolveImage(ctx, up, "uid-1", "content://media/1", takenAt)
		require.ErrorIs(t, err, rqerrors.ErrUnsupported)
	})

	t.Run("upload fails", func(t *testing.T) {
		up := storagefake.NewMemoryUploader("https://blobs.example.com")
		boom := errors.New("boom")
		up.Fail(boom)
		_, err := storage.ResolveImage(ctx, up, "", p, takenAt)
		require.ErrorIs(t, err, rqerrors.ErrUploadFailed)
		require.ErrorIs(t, err, boom)
		require.Contains(t, err.Error(), "posts/anon/")
	})
}
