package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/samber/lo"
)

const (
	BlobS3    = "s3"
	BlobMinio = "minio"
	BlobFile  = "file"

	RecordRedis  = "redis"
	RecordSQLite = "sqlite"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the application configuration.
type Settings struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	SiteURL    string `envconfig:"SITE_URL" default:"http://localhost:8080"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`

	ReplicateToken        string        `envconfig:"REPLICATE_API_TOKEN"`
	ReplicateTokenParam   string        `envconfig:"REPLICATE_API_TOKEN_PARAM"`
	ReplicateBaseURL      string        `envconfig:"REPLICATE_BASE_URL" default:"https://api.replicate.com/v1"`
	ReplicatePollInterval time.Duration `envconfig:"REPLICATE_POLL_INTERVAL" default:"1s"`

	PromptsParam string `envconfig:"PROMPTS_PARAM"`

	BlobBackend   string `envconfig:"BLOB_BACKEND" default:"s3"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL"`
	Bucket        string `envconfig:"BUCKET"`
	Distribution  string `envconfig:"DISTRIBUTION"`

	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `envconfig:"MINIO_SECRET_KEY"`
	MinioSecure    bool   `envconfig:"MINIO_SECURE" default:"true"`

	FileDir string `envconfig:"FILE_DIR" default:"generated"`

	RecordBackend string `envconfig:"RECORD_BACKEND" default:"redis"`
	RedisURL      string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"artbot.db"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	switch s.BlobBackend {
	case BlobS3:
		if s.Bucket == "" {
			return fmt.Errorf("%w: BUCKET is required for the s3 blob backend", ErrInvalidSettings)
		}
	case BlobMinio:
		if s.Bucket == "" || s.MinioEndpoint == "" {
			return fmt.Errorf("%w: BUCKET and MINIO_ENDPOINT are required for the minio blob backend", ErrInvalidSettings)
		}
	case BlobFile:
		if s.FileDir == "" {
			return fmt.Errorf("%w: FILE_DIR is required for the file blob backend", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: unknown blob backend %q", ErrInvalidSettings, s.BlobBackend)
	}

	if !lo.Contains([]string{RecordRedis, RecordSQLite}, s.RecordBackend) {
		return fmt.Errorf("%w: unknown record backend %q", ErrInvalidSettings, s.RecordBackend)
	}
	if s.ReplicatePollInterval <= 0 {
		return fmt.Errorf("%w: REPLICATE_POLL_INTERVAL must be positive", ErrInvalidSettings)
	}
	return nil
}

// FilesURL is where the file blob backend's objects are served from.
func (s *Settings) FilesURL() string {
	return lo.Ternary(s.PublicBaseURL != "", s.PublicBaseURL, s.SiteURL+"/files")
}
