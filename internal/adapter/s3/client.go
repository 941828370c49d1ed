// Package s3 adapts the minio client to the pipeline's object-store contract.
package s3

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/IsaacEarlJr/tigerRAD/internal/config"
	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
)

// Client reads the NEXRAD archive bucket. The archive is public, so the
// client signs nothing: empty static credentials put minio in anonymous mode.
// Safe for concurrent use.
type Client struct {
	mc     *minio.Client
	bucket string
	logger *slog.Logger
}

// New connects to the configured endpoint in anonymous read-only mode.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	mc, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("", "", ""),
		Secure: cfg.UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client for %s: %w", cfg.S3Endpoint, err)
	}
	return &Client{mc: mc, bucket: cfg.Bucket, logger: logger}, nil
}

// List returns every object under prefix in the order the store yields them.
// An empty prefix result is a valid, empty slice.
func (c *Client) List(ctx context.Context, prefix string) ([]domain.RemoteObject, error) {
	var objects []domain.RemoteObject
	for info := range c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", c.bucket, prefix, info.Err)
		}
		objects = append(objects, domain.RemoteObject{
			Bucket:       c.bucket,
			Key:          info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}
	c.logger.Debug("listed archive prefix", "bucket", c.bucket, "prefix", prefix, "objects", len(objects))
	return objects, nil
}

// Fetch downloads one object to destPath, overwriting any existing file.
// Cancellation and deadline come from ctx.
func (c *Client) Fetch(ctx context.Context, key, destPath string) error {
	if err := c.mc.FGetObject(ctx, c.bucket, key, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("fetch %s/%s: %w", c.bucket, key, err)
	}
	return nil
}
