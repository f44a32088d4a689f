// Package config loads client settings from the bundled app configuration
// (a YAML file) overlaid with environment variables.
//
// Sources, highest priority first:
//  1. environment variables (e.g. ROCKQUEST_API_URL);
//  2. the bundled YAML file (explicit path, CONFIG_PATH, or ./rockquest.yaml);
//  3. env-default tags and hard-coded fallbacks.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	configPathEnvVar  = "CONFIG_PATH"
	defaultBundleFile = "rockquest.yaml"
)

type Config interface {
	EnvConfig
	APIConfig
	IdentityConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetBaseURL() string
	GetJSONTimeout() time.Duration
	GetUploadTimeout() time.Duration
}

type IdentityConfig interface {
	GetIssuerURL() string
	GetTokenURL() string
	GetClientID() string
	GetClientSecret() string
	GetScopes() []string
}

type StorageConfig interface {
	GetStorageEndpoint() string
	GetStorageBucket() string
	GetStorageAccessKey() string
	GetStorageSecretKey() string
	GetStorageRegion() string
	GetStoragePublicBaseURL() string
	GetStoragePresignTTL() time.Duration
}

// Settings is the decoded configuration bundle.
type Settings struct {
	AppName  string          `yaml:"app_name"  env:"APP_NAME"  env-default:"RockQuest"`
	Env      string          `yaml:"env"       env:"ENV"       env-default:"DEV"`
	LogLevel string          `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	API      APISettings     `yaml:"api"`
	Identity IdentitySetting `yaml:"identity"`
	Storage  StorageSettings `yaml:"storage"`
}

type APISettings struct {
	// BaseURL has no env-default; an empty value falls back to DefaultBaseURL.
	BaseURL       string        `yaml:"base_url"       env:"ROCKQUEST_API_URL"`
	JSONTimeout   time.Duration `yaml:"json_timeout"   env:"ROCKQUEST_API_TIMEOUT"    env-default:"15s"`
	UploadTimeout time.Duration `yaml:"upload_timeout" env:"ROCKQUEST_UPLOAD_TIMEOUT" env-default:"60s"`
}

type IdentitySetting struct {
	IssuerURL    string   `yaml:"issuer_url"    env:"ROCKQUEST_ISSUER_URL"    env-default:"https://securetoken.google.com/rockquest-sg"`
	TokenURL     string   `yaml:"token_url"     env:"ROCKQUEST_TOKEN_URL"`
	ClientID     string   `yaml:"client_id"     env:"ROCKQUEST_CLIENT_ID"     env-default:"rockquest-sg"`
	ClientSecret string   `yaml:"client_secret" env:"ROCKQUEST_CLIENT_SECRET"`
	Scopes       []string `yaml:"scopes"        env:"ROCKQUEST_SCOPES"        env-default:"openid,email,profile,offline_access"`
}

type StorageSettings struct {
	Endpoint      string        `yaml:"endpoint"        env:"ROCKQUEST_STORAGE_ENDPOINT"`
	Bucket        string        `yaml:"bucket"          env:"ROCKQUEST_STORAGE_BUCKET"      env-default:"rockquest-sg.firebasestorage.app"`
	AccessKey     string        `yaml:"access_key"      env:"ROCKQUEST_STORAGE_ACCESS_KEY"`
	SecretKey     string        `yaml:"secret_key"      env:"ROCKQUEST_STORAGE_SECRET_KEY"`
	Region        string        `yaml:"region"          env:"ROCKQUEST_STORAGE_REGION"      env-default:"us-east-1"`
	PublicBaseURL string        `yaml:"public_base_url" env:"ROCKQUEST_STORAGE_PUBLIC_URL"`
	PresignTTL    time.Duration `yaml:"presign_ttl"     env:"ROCKQUEST_STORAGE_PRESIGN_TTL" env-default:"24h"`
}

var _ Config = (*Settings)(nil)

// New returns settings from the environment and, when present, the bundled
// configuration file.
func New() (Config, error) {
	return Load("")
}

// Load reads the bundle at path (or CONFIG_PATH, or ./rockquest.yaml) and
// overlays environment variables. A missing bundle is not an error: the
// environment and defaults are enough to talk to production.
func Load(path string) (*Settings, error) {
	var s Settings

	if path == "" {
		path = os.Getenv(configPathEnvVar)
	}
	if path == "" {
		if _, err := os.Stat(defaultBundleFile); err == nil {
			path = defaultBundleFile
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &s); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return &s, nil
	}

	if err := cleanenv.ReadEnv(&s); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	return &s, nil
}

// MustLoad panics when Load fails.
func MustLoad(path string) *Settings {
	s, err := Load(path)
	if err != nil {
		panic(err)
	}
	return s
}
