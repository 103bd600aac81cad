package cmd

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfers/config"
	"transfers/internal/models"
	"transfers/internal/storage"
)

const testManifest = `{
  "docs": [
    {"Reports": [{"key": "r/q1.pdf", "fileName": "q1.pdf"}, {"key": "r/q2.pdf", "fileName": "q2.pdf"}]},
    {"Notes": [{"key": "n/todo.txt", "fileName": "todo.txt"}]}
  ]
}`

func resetDownloadFlags(t *testing.T) {
	resetFlags(t, downloadCmd, "manifest", "token", "destination", "workers", "timeout", "bucket", "verbose")
}

func seedDocs(t *testing.T, store *storage.MemoryStore) {
	t.Helper()
	store.CreateBucket("docs")
	for key, body := range map[string]string{
		"r/q1.pdf":   "first quarter",
		"r/q2.pdf":   "second quarter",
		"n/todo.txt": "ship it",
	} {
		require.NoError(t, store.Put(context.Background(), "docs", key, strings.NewReader(body), ""))
	}
}

// readNested returns folder archive name -> entry name -> content.
func readNested(t *testing.T, path string) map[string]map[string]string {
	t.Helper()

	outer, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer outer.Close()

	out := make(map[string]map[string]string)
	for _, f := range outer.File {
		inner := readZipFile(t, f)
		zr, err := zip.NewReader(bytes.NewReader(inner), int64(len(inner)))
		require.NoError(t, err)

		entries := make(map[string]string)
		for _, e := range zr.File {
			entries[e.Name] = string(readZipFile(t, e))
		}
		out[f.Name] = entries
	}
	return out
}

func readZipFile(t *testing.T, f *zip.File) []byte {
	t.Helper()
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestDownloadManifest(t *testing.T) {
	store := storage.NewMemoryStore()
	useMemoryStore(t, store)
	seedDocs(t, store)
	resetDownloadFlags(t)

	manifest := writeTempFile(t, "files.json", []byte(testManifest))
	dest := t.TempDir()
	output := execute(t, "download", "--manifest", manifest, "--destination", dest)

	var summary models.DownloadResult
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.Equal(t, "complete", summary.Outcome)
	assert.Equal(t, 3, summary.FetchedFiles)
	assert.Empty(t, summary.MissingFiles)
	require.NotEmpty(t, summary.LocalPath)
	assert.True(t, strings.HasPrefix(summary.LocalPath, dest))

	archive := readNested(t, summary.LocalPath)
	assert.Equal(t, map[string]map[string]string{
		"Reports.zip": {"q1.pdf": "first quarter", "q2.pdf": "second quarter"},
		"Notes.zip":   {"todo.txt": "ship it"},
	}, archive)
}

func TestDownloadPartial(t *testing.T) {
	store := storage.NewMemoryStore()
	useMemoryStore(t, store)
	seedDocs(t, store)
	store.InjectFault("docs", "r/q2.pdf", storage.ErrObjectNotFound)
	resetDownloadFlags(t)

	manifest := writeTempFile(t, "files.json", []byte(testManifest))
	output := execute(t, "download", "--manifest", manifest, "--destination", t.TempDir())

	var summary models.DownloadResult
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.Equal(t, "partial", summary.Outcome)
	assert.Equal(t, 2, summary.FetchedFiles)
	assert.Equal(t, []string{"r/q2.pdf from docs"}, summary.MissingFiles)

	archive := readNested(t, summary.LocalPath)
	assert.Equal(t, map[string]string{"q1.pdf": "first quarter"}, archive["Reports.zip"])
}

func TestDownloadNothingFetched(t *testing.T) {
	store := storage.NewMemoryStore()
	useMemoryStore(t, store)
	resetDownloadFlags(t)

	dest := t.TempDir()
	manifest := writeTempFile(t, "files.json", []byte(testManifest))
	output := execute(t, "download", "--manifest", manifest, "--destination", dest)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "download", resp.Command)
	assert.Contains(t, resp.Error, "3 missing")

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDownloadWithToken(t *testing.T) {
	store := storage.NewMemoryStore()
	useMemoryStore(t, store)
	seedDocs(t, store)
	resetTokenFlags(t)
	resetDownloadFlags(t)

	manifest := writeTempFile(t, "files.json", []byte(testManifest))
	var token models.TokenResult
	require.NoError(t, json.Unmarshal([]byte(execute(t, "token", "--manifest", manifest)), &token))
	resetTokenFlags(t)

	output := execute(t, "download", "--token", token.Token, "--destination", t.TempDir())

	var summary models.DownloadResult
	require.NoError(t, json.Unmarshal([]byte(output), &summary))
	assert.Equal(t, "complete", summary.Outcome)
	assert.Equal(t, 3, summary.FetchedFiles)
}

func TestLoadManifestErrors(t *testing.T) {
	store := storage.NewMemoryStore()
	useMemoryStore(t, store)
	ctx := context.Background()

	_, err := loadManifest(ctx, "", "")
	assert.Error(t, err)

	_, err = loadManifest(ctx, "files.json", "token")
	assert.Error(t, err)

	empty := writeTempFile(t, "empty.json", []byte(`{}`))
	_, err = loadManifest(ctx, empty, "")
	assert.ErrorIs(t, err, models.ErrEmptyManifest)

	broken := writeTempFile(t, "broken.json", []byte(`{"docs": "nope"}`))
	_, err = loadManifest(ctx, broken, "")
	assert.ErrorContains(t, err, "invalid manifest")

	_, err = loadManifest(ctx, "", "not-a-jwt")
	assert.Error(t, err)
}

// Integration test for the download command against a real bucket.
// Assumes the object written by TestUploadCommandIntegration exists.
func TestDownloadCommandIntegration(t *testing.T) {
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}
	bucket := os.Getenv("TEST_BUCKET_NAME")
	require.NotEmpty(t, bucket, "TEST_BUCKET_NAME must be set")

	loadIntegrationConfig(t)
	resetDownloadFlags(t)

	manifest := writeTempFile(t, "files.json", []byte(`{"`+bucket+`": [{"test-upload": [{"key": "test-upload/upload-test.txt", "fileName": "upload-test.txt"}]}]}`))
	output := execute(t, "download", "--manifest", manifest, "--destination", t.TempDir())

	if !strings.Contains(output, `"outcome": "complete"`) {
		t.Errorf("Download was not complete: %s", output)
	}
}

func loadIntegrationConfig(t *testing.T) {
	t.Helper()

	t.Setenv("REGION", os.Getenv("TEST_REGION"))
	t.Setenv("API_URL", os.Getenv("TEST_API_URL"))
	t.Setenv("ACCESS_KEY", os.Getenv("TEST_ACCESS_KEY"))
	t.Setenv("SECRET_KEY", os.Getenv("TEST_SECRET_KEY"))

	loaded, err := config.Load()
	require.NoError(t, err)
	loaded.StorageBackend = config.StorageS3

	prev := cfg
	cfg = loaded
	t.Cleanup(func() { cfg = prev })
}
