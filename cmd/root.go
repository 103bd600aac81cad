package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"transfers/config"
	"transfers/internal/auth"
	"transfers/internal/s3client"
	"transfers/internal/secrets"
	"transfers/internal/storage"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "transfers",
	Short: "File transfer gateway for S3",
	Long: `transfers is an HTTP gateway that uploads single files, bundles
multi-folder downloads into ZIP archives and streams videos with byte-range
support, all backed by S3 or an S3-compatible endpoint.
Configuration is loaded from .env file or environment variables`,
	SilenceUsage: true,
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(videosCmd)
	rootCmd.AddCommand(tokenCmd)

	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Override bucket name from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func getBucketName(cmd *cobra.Command) string {
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket != "" {
		return bucket
	}
	return cfg.VideoBucket
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// newObjectStore builds the configured backend. The memory backend starts
// with the given buckets. Tests replace it.
var newObjectStore = func(ctx context.Context, buckets ...string) (storage.ObjectStore, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return storage.NewMemoryStore(buckets...), nil
	case config.StorageS3, "":
		client, err := s3client.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// loadSigningKey prefers JWT_SIGNING_KEY and otherwise reads the key from
// Secrets Manager.
func loadSigningKey(ctx context.Context) ([]byte, error) {
	if cfg.JWTSigningKey != "" {
		return []byte(cfg.JWTSigningKey), nil
	}
	if cfg.JWTSecretName == "" {
		return nil, fmt.Errorf("no signing key configured: set JWT_SIGNING_KEY or JWT_SECRET_KEY_NAME")
	}

	awsConfig, err := s3client.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	key, err := secrets.New(awsConfig).SigningKey(ctx, cfg.JWTSecretName, cfg.JWTSecretField)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	return key, nil
}

func newVerifier(ctx context.Context) (*auth.HMACVerifier, error) {
	key, err := loadSigningKey(ctx)
	if err != nil {
		return nil, err
	}
	return auth.NewHMACVerifier(key)
}
