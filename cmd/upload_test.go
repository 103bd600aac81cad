package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfers/internal/models"
	"transfers/internal/storage"
)

func resetUploadFlags(t *testing.T) {
	resetFlags(t, uploadCmd, "key", "confirm", "timeout", "bucket", "verbose")
}

func TestUpload(t *testing.T) {
	store := storage.NewMemoryStore()
	useMemoryStore(t, store)
	resetUploadFlags(t)

	path := writeTempFile(t, "report.txt", []byte("quarterly numbers"))
	output := execute(t, "upload", path, "--bucket", "uploads", "--key", "docs/report.txt", "--confirm")

	var confirmation models.UploadConfirmation
	require.NoError(t, json.Unmarshal([]byte(output), &confirmation))
	assert.Equal(t, "uploads", confirmation.Bucket)
	assert.Equal(t, "docs/report.txt", confirmation.Key)
	assert.Equal(t, int64(len("quarterly numbers")), confirmation.Size)
	assert.Equal(t, "success", confirmation.Status)

	data, err := store.Get(context.Background(), "uploads", "docs/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(data))
}

func TestUploadDefaultsKeyToBaseName(t *testing.T) {
	store := storage.NewMemoryStore()
	useMemoryStore(t, store)
	resetUploadFlags(t)

	path := writeTempFile(t, "notes.md", []byte("# notes"))
	execute(t, "upload", path, "--bucket", "uploads", "--confirm")

	info, err := store.Head(context.Background(), "uploads", "notes.md")
	require.NoError(t, err)
	assert.Equal(t, int64(len("# notes")), info.Size)
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    func(t *testing.T) []string
		message string
	}{
		{
			name: "Missing bucket",
			args: func(t *testing.T) []string {
				return []string{"upload", writeTempFile(t, "a.txt", []byte("a")), "--confirm"}
			},
			message: "--bucket is required",
		},
		{
			name: "Directory",
			args: func(t *testing.T) []string {
				return []string{"upload", t.TempDir(), "--bucket", "uploads", "--confirm"}
			},
			message: "is a directory",
		},
		{
			name: "Missing file",
			args: func(t *testing.T) []string {
				return []string{"upload", filepath.Join(t.TempDir(), "absent.txt"), "--bucket", "uploads", "--confirm"}
			},
			message: "absent.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			useMemoryStore(t, store)
			resetUploadFlags(t)

			output := execute(t, tt.args(t)...)

			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(output), &resp))
			assert.Equal(t, "upload", resp.Command)
			assert.Contains(t, resp.Error, tt.message)
			assert.Zero(t, store.Calls())
		})
	}
}

func TestIsDirectory(t *testing.T) {
	dir := t.TempDir()
	file := writeTempFile(t, "file.txt", []byte("x"))

	assert.True(t, isDirectory(dir))
	assert.False(t, isDirectory(file))
	assert.False(t, isDirectory(filepath.Join(dir, "missing")))
}

// Integration test for the upload command against a real bucket.
// Skipped by default; set S3_INTEGRATION_TEST=true to run.
func TestUploadCommandIntegration(t *testing.T) {
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}
	bucket := os.Getenv("TEST_BUCKET_NAME")
	require.NotEmpty(t, bucket, "TEST_BUCKET_NAME must be set")

	loadIntegrationConfig(t)
	resetUploadFlags(t)

	path := writeTempFile(t, "upload-test.txt", []byte("test content for upload command"))
	output := execute(t, "upload", path, "--bucket", bucket, "--key", "test-upload/upload-test.txt", "--confirm")

	if !strings.Contains(output, "test-upload/upload-test.txt") {
		t.Errorf("Output doesn't contain destination key: %s", output)
	}
	if !strings.Contains(output, bucket) {
		t.Errorf("Output doesn't contain bucket name: %s", output)
	}
}
