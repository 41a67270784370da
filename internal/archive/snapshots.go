package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pos-suite/backend-go/internal/config"
	"github.com/pos-suite/backend-go/internal/engine"
)

// SnapshotArchiver uploads the normalized snapshot of each tick to an
// S3-compatible bucket, keyed by fetch time, for later replay or debugging
// of reconciliation discrepancies.
type SnapshotArchiver struct {
	client *minio.Client
	bucket string
}

// NewSnapshotArchiver connects to the object store and ensures the bucket
// exists.
func NewSnapshotArchiver(ctx context.Context, cfg config.SnapshotConfig) (*SnapshotArchiver, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("snapshot endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("snapshot credentials must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &SnapshotArchiver{client: client, bucket: cfg.Bucket}, nil
}

// Store uploads one snapshot as JSON.
func (a *SnapshotArchiver) Store(ctx context.Context, snap *engine.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := fmt.Sprintf("snapshots/%s.json", snap.FetchedAt.UTC().Format("20060102T150405.000Z0700"))
	_, err = a.client.PutObject(ctx, a.bucket, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("upload snapshot %s: %w", key, err)
	}
	return nil
}
