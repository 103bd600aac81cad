package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"transfers/internal/auth"
	"transfers/internal/models"
	"transfers/pkg/utils"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an upload or download token",
	Long: `Sign a transfer token with the configured signing key.

An upload token names one bucket and key (--bucket and --key). A download
token carries a files manifest read from --manifest.`,
	Example: `  # Upload token valid for 15 minutes
  transfers token --bucket uploads --key docs/report.pdf --ttl 15m

  # Download token from a manifest
  transfers token --manifest files.json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runToken(cmd)
	},
}

func runToken(cmd *cobra.Command) {
	ttl, _ := cmd.Flags().GetDuration("ttl")

	claims, err := tokenClaims(cmd)
	if err != nil {
		utils.PrintError(err, "token")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	verifier, err := newVerifier(ctx)
	if err != nil {
		utils.PrintError(err, "token")
		return
	}
	token, err := verifier.Sign(claims, ttl)
	if err != nil {
		utils.PrintError(err, "token")
		return
	}

	out := models.TokenResult{Token: token}
	if ttl > 0 {
		out.ExpiresAt = utils.FormatTime(time.Now().Add(ttl))
	}
	if err := utils.PrintJSON(out); err != nil {
		utils.PrintError(err, "token")
	}
}

func tokenClaims(cmd *cobra.Command) (auth.Claims, error) {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	key, _ := cmd.Flags().GetString("key")
	bucket, _ := cmd.Flags().GetString("bucket")

	if manifestPath != "" {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			return auth.Claims{}, err
		}
		var manifest models.DownloadManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			return auth.Claims{}, fmt.Errorf("invalid manifest %s: %w", manifestPath, err)
		}
		if manifest.FileCount() == 0 {
			return auth.Claims{}, models.ErrEmptyManifest
		}
		files, err := json.Marshal(manifest)
		if err != nil {
			return auth.Claims{}, err
		}
		return auth.Claims{Files: files}, nil
	}

	if bucket == "" || key == "" {
		return auth.Claims{}, fmt.Errorf("an upload token needs --bucket and --key")
	}
	return auth.Claims{Bucket: bucket, Key: key}, nil
}

func init() {
	tokenCmd.Flags().StringP("key", "k", "", "Object key for an upload token")
	tokenCmd.Flags().StringP("manifest", "m", "", "Manifest file for a download token")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime; 0 disables expiry")
}
