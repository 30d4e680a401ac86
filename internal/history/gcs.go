package history

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSArchive mirrors run records into a Cloud Storage bucket so history
// survives the machine the CLI ran on.
type GCSArchive struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ Store = (*GCSArchive)(nil)

func NewGCSArchive(ctx context.Context, bucket, prefix string) (*GCSArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	if prefix == "" {
		prefix = "reels"
	}
	return &GCSArchive{client: client, bucket: bucket, prefix: prefix}, nil
}

func (a *GCSArchive) Close() error {
	return a.client.Close()
}

func (a *GCSArchive) Record(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	name := path.Join(a.prefix, runDirName(rec.CreatedAt, rec.Request.ProductName), "record.json")
	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write record to gs://%s/%s: %w", a.bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize record in gs://%s/%s: %w", a.bucket, name, err)
	}
	return nil
}

// List returns the archived run directory names, newest last.
func (a *GCSArchive) List(ctx context.Context) ([]string, error) {
	bkt := a.client.Bucket(a.bucket)
	query := &storage.Query{Prefix: a.prefix + "/"}

	var runs []string
	seen := map[string]bool{}
	it := bkt.Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		rest := strings.TrimPrefix(attrs.Name, a.prefix+"/")
		run, _, ok := strings.Cut(rest, "/")
		if !ok || seen[run] {
			continue
		}
		seen[run] = true
		runs = append(runs, run)
	}

	return runs, nil
}

// Tee writes every record to both stores, preferring the local error when
// both fail.
type Tee struct {
	Local  Store
	Remote Store
}

var _ Store = Tee{}

func (t Tee) Record(ctx context.Context, rec Record) error {
	localErr := t.Local.Record(ctx, rec)
	remoteErr := t.Remote.Record(ctx, rec)
	if localErr != nil {
		return localErr
	}
	return remoteErr
}
