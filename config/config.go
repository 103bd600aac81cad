package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageS3     = "s3"
	StorageMemory = "memory"
)

type Config struct {
	AppName  string
	LogLevel string

	ApiURL    string
	AccessKey string
	SecretKey string
	Region    string

	StorageBackend string
	VideoBucket    string

	JWTSecretName  string
	JWTSecretField string
	JWTSigningKey  string

	HTTPAddr         string
	DebugAddr        string
	AllowedOrigins   []string
	VideoRequireAuth bool

	DownloadWorkers int
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables only")
	}

	workers, err := getEnvInt("DOWNLOAD_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 512<<20)
	if err != nil {
		return nil, err
	}
	shutdown, err := getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	requireAuth, err := getEnvBool("VIDEO_REQUIRE_AUTH", false)
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppName:          getEnv("APP_NAME", "transfers"),
		LogLevel:         getEnv("LOG_LEVEL", getEnv("LOGGIN_LEVEL", "info")),
		ApiURL:           getEnv("API_URL", ""),
		AccessKey:        getEnv("ACCESS_KEY", ""),
		SecretKey:        getEnv("SECRET_KEY", ""),
		Region:           getEnv("REGION", getEnv("REGION_NAME", "us-east-1")),
		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", StorageS3)),
		VideoBucket:      getEnv("S3_BUCKET_VIDEOS", ""),
		JWTSecretName:    getEnv("JWT_SECRET_KEY_NAME", ""),
		JWTSecretField:   getEnv("JWT_SECRET_FIELD", "key"),
		JWTSigningKey:    getEnv("JWT_SIGNING_KEY", ""),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8000"),
		DebugAddr:        getEnv("DEBUG_ADDR", ":9090"),
		AllowedOrigins:   getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		VideoRequireAuth: requireAuth,
		DownloadWorkers:  workers,
		MaxUploadBytes:   int64(maxUpload),
		ShutdownTimeout:  time.Duration(shutdown) * time.Second,
	}

	return config, nil
}

// Validate checks the settings the HTTP gateway cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSigningKey == "" && c.JWTSecretName == "" {
		errs = append(errs, errors.New("one of JWT_SIGNING_KEY or JWT_SECRET_KEY_NAME is required"))
	}
	if c.VideoBucket == "" {
		errs = append(errs, errors.New("S3_BUCKET_VIDEOS is required"))
	}
	if c.StorageBackend != StorageS3 && c.StorageBackend != StorageMemory {
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}
	if c.DownloadWorkers < 1 {
		errs = append(errs, errors.New("DOWNLOAD_WORKERS must be at least 1"))
	}
	if c.MaxUploadBytes < 1 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
