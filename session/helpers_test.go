package session_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://securetoken.example.com/rockquest-sg"
	testClientID = "rockquest-sg"
	testUID      = "uid-1"
	testEmail    = "ada@example.com"
	testPassword = "hunter22"
	testRefresh  = "refresh-1"
)

var testKey = mustKey()

func mustKey() *rsa.PrivateKey {
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return k
}

// signIDToken issues an RS256 ID token for uid that expires after ttl.
func signIDToken(t *testing.T, uid string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, jwtlib.MapClaims{
		"iss":            testIssuer,
		"aud":            testClientID,
		"sub":            uid,
		"email":          testEmail,
		"email_verified": true,
		"name":           "Ada",
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
	})
	token.Header["kid"] = "test-key"
	raw, err := token.SignedString(testKey)
	require.NoError(t, err)
	return raw
}

// tokenServer is a minimal OAuth2 token endpoint supporting the password
// and refresh_token grants.
type tokenServer struct {
	*httptest.Server
	refreshes atomic.Int32
	expiresIn int
}

func newTokenServer(t *testing.T, expiresIn int) *tokenServer {
	t.Helper()
	ts := &tokenServer{expiresIn: expiresIn}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		switch r.PostForm.Get("grant_type") {
		case "password":
			if r.PostForm.Get("username") != testEmail || r.PostForm.Get("password") != testPassword {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
		case "refresh_token":
			if r.PostForm.Get("refresh_token") != testRefresh {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			ts.refreshes.Add(1)
		default:
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + testUID,
			"token_type":    "Bearer",
			"expires_in":    ts.expiresIn,
			"refresh_token": testRefresh,
			"id_token":      signIDToken(t, testUID, time.Hour),
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}
