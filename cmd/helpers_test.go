package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"transfers/config"
	"transfers/internal/storage"
)

const testSigningKey = "cmd-test-signing-key"

// useMemoryStore points every command at store for the duration of the test.
func useMemoryStore(t *testing.T, store *storage.MemoryStore) {
	t.Helper()

	prevCfg, prevStore := cfg, newObjectStore
	cfg = &config.Config{
		StorageBackend:  config.StorageMemory,
		VideoBucket:     "videos",
		JWTSigningKey:   testSigningKey,
		DownloadWorkers: 2,
	}
	newObjectStore = func(ctx context.Context, buckets ...string) (storage.ObjectStore, error) {
		for _, b := range buckets {
			store.CreateBucket(b)
		}
		return store, nil
	}
	t.Cleanup(func() {
		cfg, newObjectStore = prevCfg, prevStore
	})
}

// resetFlags restores the named flags to their defaults. Commands are package
// globals, so flag values otherwise leak between tests.
func resetFlags(t *testing.T, cmd *cobra.Command, names ...string) {
	t.Helper()
	// Merges --bucket and --verbose from the root into cmd.Flags().
	cmd.InheritedFlags()
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		require.NotNil(t, f, "flag %s", name)
		require.NoError(t, f.Value.Set(f.DefValue))
		f.Changed = false
	}
}

// execute runs the root command with args and returns what it printed to
// stdout.
func execute(t *testing.T, args ...string) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout
	output := <-done

	require.NoError(t, execErr)
	return output
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := t.TempDir() + string(os.PathSeparator) + name
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}
