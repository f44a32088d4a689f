package config

import (
	"os"
	"strings"
	"time"
)

// DefaultBaseURL is the production backend used when neither the
// environment nor the bundled configuration names one.
const DefaultBaseURL = "https://rockquest-app-412827412582.us-central1.run.app"

const (
	defaultJSONTimeout   = 15 * time.Second
	defaultUploadTimeout = 60 * time.Second
)

var _ EnvConfig = (*Settings)(nil)

func (s *Settings) GetAppName() string {
	return s.AppName
}

func (s *Settings) GetEnv() string {
	if s.Env == "" {
		return "DEV"
	}
	return strings.ToUpper(s.Env)
}

func (s *Settings) GetLogLevel() string {
	return s.LogLevel
}

var _ APIConfig = (*Settings)(nil)

// GetBaseURL returns the backend base URL without a trailing slash.
func (s *Settings) GetBaseURL() string {
	base := strings.TrimSpace(s.API.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

func (s *Settings) GetJSONTimeout() time.Duration {
	if s.API.JSONTimeout <= 0 {
		return defaultJSONTimeout
	}
	return s.API.JSONTimeout
}

func (s *Settings) GetUploadTimeout() time.Duration {
	if s.API.UploadTimeout <= 0 {
		return defaultUploadTimeout
	}
	return s.API.UploadTimeout
}

var _ IdentityConfig = (*Settings)(nil)

func (s *Settings) GetIssuerURL() string {
	return s.Identity.IssuerURL
}

func (s *Settings) GetTokenURL() string {
	return s.Identity.TokenURL
}

func (s *Settings) GetClientID() string {
	return s.Identity.ClientID
}

func (s *Settings) GetClientSecret() string {
	return s.Identity.ClientSecret
}

func (s *Settings) GetScopes() []string {
	return s.Identity.Scopes
}

var _ StorageConfig = (*Settings)(nil)

func (s *Settings) GetStorageEndpoint() string {
	return s.Storage.Endpoint
}

func (s *Settings) GetStorageBucket() string {
	return s.Storage.Bucket
}

func (s *Settings) GetStorageAccessKey() string {
	return s.Storage.AccessKey
}

func (s *Settings) GetStorageSecretKey() string {
	return s.Storage.SecretKey
}

func (s *Settings) GetStorageRegion() string {
	return s.Storage.Region
}

func (s *Settings) GetStoragePublicBaseURL() string {
	return s.Storage.PublicBaseURL
}

func (s *Settings) GetStoragePresignTTL() time.Duration {
	return s.Storage.PresignTTL
}

// GetEnv returns the environment variable or defaultValue when unset.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
