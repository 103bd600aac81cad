package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"transfers/internal/models"
	"transfers/internal/transfer"
	"transfers/pkg/utils"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a local file to a bucket key",
	Long: `Upload one local file to S3 through the same path the HTTP gateway
uses, including content-type detection.

The destination key defaults to the file's base name and can be set with
--key. The bucket comes from --bucket (required).`,
	Example: `  # Upload a file to a specific key
  transfers upload report.pdf --bucket uploads --key docs/report.pdf

  # Skip the confirmation prompt
  transfers upload clip.mp4 --bucket videos --confirm`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runUpload(cmd, args)
	},
}

func runUpload(cmd *cobra.Command, args []string) {
	path := args[0]
	key, _ := cmd.Flags().GetString("key")
	confirm, _ := cmd.Flags().GetBool("confirm")
	bucket, _ := cmd.Flags().GetString("bucket")

	if bucket == "" {
		utils.PrintError(fmt.Errorf("--bucket is required"), "upload")
		return
	}
	if isDirectory(path) {
		utils.PrintError(fmt.Errorf("%s is a directory", path), "upload")
		return
	}
	if key == "" {
		key = filepath.Base(path)
	}

	if !confirm {
		fmt.Printf("Upload operation summary:\n")
		fmt.Printf("  Bucket: %s\n", bucket)
		fmt.Printf("  Key: %s\n", key)
		fmt.Printf("  File: %s\n", path)

		fmt.Print("Continue with upload? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if !slices.Contains([]string{"y", "yes"}, strings.ToLower(response)) {
			fmt.Println("Upload cancelled.")
			return
		}
	}

	body, err := os.ReadFile(path)
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	store, err := newObjectStore(ctx, bucket)
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}

	if isVerbose(cmd) {
		cmd.Printf("Uploading %s (%s) to %s/%s\n", path, utils.FormatBytes(int64(len(body))), bucket, key)
	}

	res := transfer.NewService(store).Upload(ctx, transfer.UploadRequest{
		Target:   models.UploadTarget{Bucket: bucket, Key: key},
		FileName: filepath.Base(path),
		Body:     body,
	})
	confirmation, err := res.Unwrap()
	if err != nil {
		utils.PrintError(err, "upload")
		return
	}

	if err := utils.PrintJSON(confirmation); err != nil {
		utils.PrintError(err, "upload")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Upload operation completed successfully")
	}
}

func isDirectory(path string) bool {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func init() {
	uploadCmd.Flags().StringP("key", "k", "", "Destination key (default: file base name)")
	uploadCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	uploadCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the operation (default: 1 hour)")
}
