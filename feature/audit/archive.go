package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"gearsync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Archive stores the raw outbound payloads of each cycle in object storage
// so rejected uploads can be replayed and inspected later.
type Archive struct {
	client storage.Client
	bucket string
}

// NewArchive creates an archive writer on an existing storage client.
func NewArchive(client storage.Client, bucket string) *Archive {
	return &Archive{client: client, bucket: bucket}
}

// EnsureBucket creates the archive bucket if it does not exist yet.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check archive bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create archive bucket: %w", err)
	}
	return nil
}

// Save marshals the given payload and stores it under
// cycles/<cycleID>/<name>.json.
func (a *Archive) Save(ctx context.Context, cycleID, name string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode archive payload: %w", err)
	}

	key := path.Join("cycles", cycleID, name+".json")
	reader := bytes.NewReader(data)

	_, err = a.client.PutObject(ctx, a.bucket, key, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("store archive object %s: %w", key, err)
	}

	return nil
}
