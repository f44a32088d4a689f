package api_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/rockquest/api"
	"github.com/jrsteele09/rockquest/dispatcher"
	rqerrors "github.com/jrsteele09/rockquest/internal/errors"
	"github.com/stretchr/testify/require"
)

func graniteClassifier(_ string, _ []byte) api.ScanResult {
	return api.ScanResult{PredictedType: "Granite", RawLabel: "granite", ConfidenceScore: 0.88, ClassID: 4}
}

func TestScanRock(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers()
	env.backend.SetClassifier(graniteClassifier)
	ctx := context.Background()
	client := env.clientFor(playerUID)

	result, err := client.ScanRock(ctx, bytes.NewReader([]byte("jpeg")), "")
	require.NoError(t, err)
	require.Equal(t, "Granite", result.PredictedType)
	require.InDelta(t, 0.88, result.ConfidenceScore, 1e-9)
	require.Equal(t, 4, result.ClassID)

	info, ok := result.Rock()
	require.True(t, ok)
	require.Equal(t, api.Igneous, info.Category)

	req, ok := env.backend.LastRequest()
	require.True(t, ok)
	require.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data; boundary="))
	require.Contains(t, string(req.Body), `filename="scan.jpg"`)
	require.Contains(t, string(req.Body), "Content-Type: image/jpeg")

	stats, err := client.GetScanStats(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, stats.Day.Count)
	require.Equal(t, 1, stats.Day.ByType["Granite"])
	require.Equal(t, 1, stats.Total)
}

func TestScanRockFromURI(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers()
	env.backend.SetClassifier(graniteClassifier)
	ctx := context.Background()
	client := env.clientFor(playerUID)

	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o600))

	result, err := client.ScanRockFromURI(ctx, "file://"+filepath.ToSlash(path), "rock.jpg")
	require.NoError(t, err)
	require.Equal(t, "Granite", result.PredictedType)

	req, _ := env.backend.LastRequest()
	require.Contains(t, string(req.Body), `filename="rock.jpg"`)
	require.Contains(t, string(req.Body), "jpeg-bytes")

	_, err = client.ScanRockFromURI(ctx, "https://example.com/rock.jpg", "")
	require.ErrorIs(t, err, rqerrors.ErrUnsupported)

	_, err = client.ScanRockFromURI(ctx, filepath.Join(t.TempDir(), "missing.jpg"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestScanRock_LowConfidence(t *testing.T) {
	env := newTestEnv(t)
	env.seedUsers()
	env.backend.SetConfidenceThreshold(0.95)
	env.backend.SetClassifier(graniteClassifier)

	_, err := env.clientFor(playerUID).ScanRock(context.Background(), strings.NewReader("blurry"), "scan.jpg")
	require.Error(t, err)
	require.Equal(t, 422, dispatcher.StatusCode(err))

	msg, ok := api.LowConfidence(err)
	require.True(t, ok)
	require.Contains(t, msg, "confidence too low")
}

func TestLowConfidence(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
		wantOK  bool
	}{
		{
			name:    "object detail",
			err:     &dispatcher.HTTPError{Status: 422, Body: []byte(`{"detail":{"message":"Too blurry"}}`)},
			wantMsg: "Too blurry",
			wantOK:  true,
		},
		{
			name:    "string detail",
			err:     &dispatcher.HTTPError{Status: 422, Body: []byte(`{"detail":"Not a rock"}`)},
			wantMsg: "Not a rock",
			wantOK:  true,
		},
		{
			name:    "no detail",
			err:     &dispatcher.HTTPError{Status: 422, Body: []byte(`{}`)},
			wantMsg: api.LowConfidenceFallback,
			wantOK:  true,
		},
		{
			name:   "validation error",
			err:    &dispatcher.HTTPError{Status: 422, Body: []byte(`{"detail":[{"msg":"field required"}]}`)},
			wantOK: false,
		},
		{
			name:   "server error",
			err:    &dispatcher.HTTPError{Status: 500, Body: []byte(`{"detail":"boom"}`)},
			wantOK: false,
		},
		{
			name:   "network error",
			err:    &dispatcher.NetworkError{Method: "POST", Path: "/player/scan-rock", Err: rqerrors.ErrNetwork},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := api.LowConfidence(tt.err)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestLocalPath(t *testing.T) {
	p, err := api.LocalPath("file:///tmp/a.jpg")
	require.NoError(t, err)
	require.Equal(t, filepath.FromSlash("/tmp/a.jpg"), p)

	p, err = api.LocalPath("photos/../a.jpg")
	require.NoError(t, err)
	require.Equal(t, "a.jpg", p)

	_, err = api.LocalPath("")
	require.ErrorIs(t, err, rqerrors.ErrInvalidRequest)
}
