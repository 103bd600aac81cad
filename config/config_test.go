package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")

	result := getEnv("TEST_VAR", "default_value")
	if result != "test_value" {
		t.Errorf("getEnv() = %s, want %s", result, "test_value")
	}

	result = getEnv("NON_EXISTENT_VAR", "default_value")
	if result != "default_value" {
		t.Errorf("getEnv() = %s, want %s", result, "default_value")
	}

	t.Setenv("EMPTY_VAR", "")

	result = getEnv("EMPTY_VAR", "default_value")
	if result != "default_value" {
		t.Errorf("getEnv() = %s, want %s", result, "default_value")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("INT_VAR", "12")
	n, err := getEnvInt("INT_VAR", 3)
	if err != nil || n != 12 {
		t.Errorf("getEnvInt() = %d, %v, want 12, nil", n, err)
	}

	n, err = getEnvInt("MISSING_INT_VAR", 3)
	if err != nil || n != 3 {
		t.Errorf("getEnvInt() = %d, %v, want 3, nil", n, err)
	}

	t.Setenv("BAD_INT_VAR", "twelve")
	if _, err := getEnvInt("BAD_INT_VAR", 3); err == nil {
		t.Error("getEnvInt() expected error for non-numeric value")
	}
}

func TestGetEnvList(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{"Unset", "", []string{"*"}},
		{"Single", "https://a.example.com", []string{"https://a.example.com"}},
		{"Multiple with spaces", " https://a.example.com , https://b.example.com ", []string{"https://a.example.com", "https://b.example.com"}},
		{"Only separators", " , ,", []string{"*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LIST_VAR", tt.value)
			result := getEnvList("LIST_VAR", []string{"*"})
			if strings.Join(result, "|") != strings.Join(tt.expected, "|") {
				t.Errorf("getEnvList() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	testVars := map[string]string{
		"API_URL":                  "https://test-api.example.com",
		"ACCESS_KEY":               "test-access-key",
		"SECRET_KEY":               "test-secret-key",
		"REGION":                   "test-region",
		"S3_BUCKET_VIDEOS":         "videos",
		"JWT_SIGNING_KEY":          "signing-key",
		"DOWNLOAD_WORKERS":         "2",
		"SHUTDOWN_TIMEOUT_SECONDS": "5",
		"VIDEO_REQUIRE_AUTH":       "true",
		"ALLOWED_ORIGINS":          "https://app.example.com",
	}
	for key, value := range testVars {
		t.Setenv(key, value)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.ApiURL != testVars["API_URL"] {
		t.Errorf("config.ApiURL = %s, want %s", config.ApiURL, testVars["API_URL"])
	}
	if config.Region != testVars["REGION"] {
		t.Errorf("config.Region = %s, want %s", config.Region, testVars["REGION"])
	}
	if config.VideoBucket != "videos" {
		t.Errorf("config.VideoBucket = %s, want videos", config.VideoBucket)
	}
	if config.DownloadWorkers != 2 {
		t.Errorf("config.DownloadWorkers = %d, want 2", config.DownloadWorkers)
	}
	if config.ShutdownTimeout != 5*time.Second {
		t.Errorf("config.ShutdownTimeout = %s, want 5s", config.ShutdownTimeout)
	}
	if !config.VideoRequireAuth {
		t.Error("config.VideoRequireAuth = false, want true")
	}
	if len(config.AllowedOrigins) != 1 || config.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("config.AllowedOrigins = %v", config.AllowedOrigins)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"REGION", "REGION_NAME", "LOG_LEVEL", "LOGGIN_LEVEL", "HTTP_ADDR", "STORAGE_BACKEND", "DOWNLOAD_WORKERS", "ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Region != "us-east-1" {
		t.Errorf("config.Region = %s, want us-east-1", config.Region)
	}
	if config.LogLevel != "info" {
		t.Errorf("config.LogLevel = %s, want info", config.LogLevel)
	}
	if config.HTTPAddr != ":8000" {
		t.Errorf("config.HTTPAddr = %s, want :8000", config.HTTPAddr)
	}
	if config.StorageBackend != StorageS3 {
		t.Errorf("config.StorageBackend = %s, want %s", config.StorageBackend, StorageS3)
	}
	if config.DownloadWorkers != 4 {
		t.Errorf("config.DownloadWorkers = %d, want 4", config.DownloadWorkers)
	}
}

func TestLoadLegacyLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOGGIN_LEVEL", "DEBUG")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.LogLevel != "DEBUG" {
		t.Errorf("config.LogLevel = %s, want DEBUG", config.LogLevel)
	}
}

func TestLoadInvalidInt(t *testing.T) {
	t.Setenv("DOWNLOAD_WORKERS", "many")
	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid DOWNLOAD_WORKERS")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		VideoBucket:     "videos",
		JWTSigningKey:   "k",
		StorageBackend:  StorageS3,
		DownloadWorkers: 1,
		MaxUploadBytes:  1,
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid", func(*Config) {}, false},
		{"Secret name instead of key", func(c *Config) { c.JWTSigningKey = ""; c.JWTSecretName = "dev/jwt" }, false},
		{"No key source", func(c *Config) { c.JWTSigningKey = "" }, true},
		{"No video bucket", func(c *Config) { c.VideoBucket = "" }, true},
		{"Unknown backend", func(c *Config) { c.StorageBackend = "gcs" }, true},
		{"Zero workers", func(c *Config) { c.DownloadWorkers = 0 }, true},
		{"Zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.expectError {
				t.Errorf("Validate() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}
