package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"transfers/internal/video"
	"transfers/pkg/utils"
)

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Inspect the video catalog",
	Long: `Inspect the video bucket. The bucket name is taken from S3_BUCKET_VIDEOS
unless overridden with --bucket.`,
}

var videosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos under a prefix",
	Example: `  # List every video
  transfers videos list

  # List videos in a folder
  transfers videos list --prefix Guides/`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runVideosList(cmd)
	},
}

var videosInfoCmd = &cobra.Command{
	Use:     "info [video-path]",
	Short:   "Show size, type and stream URL details for one video",
	Example: `  transfers videos info "Guides/Quick start.mp4"`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runVideosInfo(cmd, args[0])
	},
}

func newCatalog(ctx context.Context, cmd *cobra.Command) (*video.Catalog, error) {
	bucket := getBucketName(cmd)
	store, err := newObjectStore(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if isVerbose(cmd) {
		cmd.Printf("Using video bucket: %s\n", bucket)
	}
	return video.NewCatalog(store, bucket), nil
}

func runVideosList(cmd *cobra.Command) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	catalog, err := newCatalog(ctx, cmd)
	if err != nil {
		utils.PrintError(err, "videos list")
		return
	}

	prefix, _ := cmd.Flags().GetString("prefix")
	listing, rerr := catalog.List(ctx, prefix)
	if rerr != nil {
		utils.PrintError(rerr, "videos list")
		return
	}
	if err := utils.PrintJSON(listing); err != nil {
		utils.PrintError(err, "videos list")
	}
}

func runVideosInfo(cmd *cobra.Command, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	catalog, err := newCatalog(ctx, cmd)
	if err != nil {
		utils.PrintError(err, "videos info")
		return
	}

	info, rerr := catalog.Info(ctx, path)
	if rerr != nil {
		utils.PrintError(rerr, "videos info")
		return
	}
	if err := utils.PrintJSON(info); err != nil {
		utils.PrintError(err, "videos info")
	}
}

func init() {
	videosCmd.AddCommand(videosListCmd)
	videosCmd.AddCommand(videosInfoCmd)

	videosListCmd.Flags().StringP("prefix", "p", "", "Only list keys under this prefix")
}
