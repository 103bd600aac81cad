package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"transfers/internal/auth"
	"transfers/internal/models"
	"transfers/internal/result"
	"transfers/internal/transfer"
	"transfers/pkg/utils"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Bundle files from a manifest or token into a ZIP archive",
	Long: `Fetch every file a download manifest names and write the resulting
ZIP-of-ZIPs archive to a local directory.

The manifest is either a JSON file in the token claim shape
  {"<bucket>": [{"<folder>": [{"key": "...", "fileName": "..."}]}]}
or the "files" claim of a signed download token passed with --token.
Files that cannot be fetched are listed in the output and do not stop the
download.`,
	Example: `  # Download from a manifest file into the current directory
  transfers download --manifest files.json

  # Download using a signed token
  transfers download --token "$JWT" --destination /tmp/downloads`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runDownload(cmd)
	},
}

func runDownload(cmd *cobra.Command) {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	token, _ := cmd.Flags().GetString("token")
	destination, _ := cmd.Flags().GetString("destination")
	if destination == "" {
		destination = "."
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	manifest, err := loadManifest(ctx, manifestPath, token)
	if err != nil {
		utils.PrintError(err, "download")
		return
	}

	var buckets []string
	for _, b := range manifest.Buckets {
		buckets = append(buckets, b.Bucket)
	}
	store, err := newObjectStore(ctx, buckets...)
	if err != nil {
		utils.PrintError(err, "download")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Starting download operation...\n")
		cmd.Printf("  Buckets: %d\n", len(manifest.Buckets))
		cmd.Printf("  Files: %d\n", manifest.FileCount())
		cmd.Printf("  Destination: %s\n", destination)
	}

	start := time.Now()
	workers, _ := cmd.Flags().GetInt("workers")
	if workers < 1 {
		workers = cfg.DownloadWorkers
	}
	out, err := transfer.NewService(store, transfer.WithWorkers(workers)).Download(ctx, manifest)
	if err != nil {
		utils.PrintError(err, "download")
		return
	}

	summary, err := writeOutcome(out, destination, time.Since(start))
	if err != nil {
		utils.PrintError(err, "download")
		return
	}
	if err := utils.PrintJSON(summary); err != nil {
		utils.PrintError(err, "download")
		return
	}

	if isVerbose(cmd) && summary.LocalPath != "" {
		cmd.Printf("Archive written to %s\n", summary.LocalPath)
	}
}

// loadManifest reads the manifest from a file, or verifies token and uses
// its files claim.
func loadManifest(ctx context.Context, path, token string) (models.DownloadManifest, error) {
	switch {
	case path != "" && token != "":
		return models.DownloadManifest{}, fmt.Errorf("use either --manifest or --token, not both")
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return models.DownloadManifest{}, err
		}
		var manifest models.DownloadManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return models.DownloadManifest{}, fmt.Errorf("invalid manifest %s: %w", path, err)
		}
		if manifest.FileCount() == 0 {
			return models.DownloadManifest{}, models.ErrEmptyManifest
		}
		return manifest, nil
	case token != "":
		verifier, err := newVerifier(ctx)
		if err != nil {
			return models.DownloadManifest{}, err
		}
		bearer, rerr := auth.ResolveToken("", token)
		if rerr != nil {
			return models.DownloadManifest{}, rerr
		}
		claims, rerr := auth.Authenticate(verifier, bearer)
		if rerr != nil {
			return models.DownloadManifest{}, rerr
		}
		manifest, rerr := claims.Manifest()
		if rerr != nil {
			return models.DownloadManifest{}, rerr
		}
		return manifest, nil
	default:
		return models.DownloadManifest{}, fmt.Errorf("one of --manifest or --token is required")
	}
}

// writeOutcome saves the archive under destination and summarizes the run.
// An empty outcome writes nothing and is reported as an error.
func writeOutcome(out models.DownloadOutcome, destination string, took time.Duration) (models.DownloadResult, error) {
	summary := models.DownloadResult{
		Outcome:          out.Kind.String(),
		FetchedFiles:     out.Fetched,
		MissingFiles:     out.Missing,
		TotalSizeBytes:   int64(len(out.Archive)),
		TotalSizeHuman:   utils.FormatBytes(int64(len(out.Archive))),
		OperationTime:    utils.FormatTime(time.Now()),
		DownloadDuration: took.Round(time.Millisecond).String(),
	}

	if _, rerr := result.ForDownload(out); rerr != nil {
		return summary, fmt.Errorf("%s (%d missing)", rerr.Message, len(out.Missing))
	}

	if err := os.MkdirAll(destination, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create destination: %w", err)
	}
	localPath := filepath.Join(destination, out.FileName)
	if err := os.WriteFile(localPath, out.Archive, 0o644); err != nil {
		return summary, fmt.Errorf("failed to write archive: %w", err)
	}
	summary.LocalPath = localPath
	return summary, nil
}

func init() {
	downloadCmd.Flags().StringP("manifest", "m", "", "Path to a JSON download manifest")
	downloadCmd.Flags().StringP("token", "t", "", "Signed download token")
	downloadCmd.Flags().StringP("destination", "d", "", "Local destination directory (default: current directory)")
	downloadCmd.Flags().Int("workers", 0, "Folders fetched concurrently (default: DOWNLOAD_WORKERS)")
	downloadCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")
}
