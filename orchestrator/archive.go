package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"clearfeed/common"
	"clearfeed/config"
	"clearfeed/types"

	"github.com/google/uuid"
)

const archiveTimeout = 30 * time.Second

// ObjectStore uploads a single object.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, contentType, cacheControl string) error
}

// SnapshotArchive writes each fresh global aggregate to object storage as
// <prefix>snapshots/<utc timestamp>-<uuid>.json.
type SnapshotArchive struct {
	objects ObjectStore
	bucket  string
	prefix  string
	now     func() time.Time
	newID   func() string
}

// NewSnapshotArchive creates an archive writing to bucket under prefix.
func NewSnapshotArchive(objects ObjectStore, bucket, prefix string) *SnapshotArchive {
	return &SnapshotArchive{
		objects: objects,
		bucket:  bucket,
		prefix:  prefix,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// NewSnapshotArchiveFromConfig returns nil when S3_BUCKET is unset or the
// client cannot be created; snapshots are then skipped.
func NewSnapshotArchiveFromConfig(ctx context.Context, cfg config.Config) *SnapshotArchive {
	if cfg.S3Bucket == "" {
		return nil
	}

	client, err := common.NewS3(ctx, common.S3Config{
		Region:       cfg.S3Region,
		Profile:      cfg.S3Profile,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		log.Printf("⚠️  Failed to init S3 client: %v (snapshots disabled)", err)
		return nil
	}
	log.Printf("✓ Snapshots enabled: s3://%s/%ssnapshots/", cfg.S3Bucket, cfg.S3Prefix)
	return NewSnapshotArchive(client, cfg.S3Bucket, cfg.S3Prefix)
}

// Key returns the object key for a snapshot taken at t.
func (a *SnapshotArchive) Key(t time.Time, id string) string {
	return a.prefix + "snapshots/" + t.UTC().Format("20060102T150405Z") + "-" + id + ".json"
}

func (a *SnapshotArchive) Archive(ctx context.Context, articles []*types.Article) error {
	if articles == nil {
		articles = []*types.Article{}
	}
	now := a.now()
	b, err := json.MarshalIndent(types.FeedResult{
		FetchedAt:    now.UTC(),
		ArticleCount: len(articles),
		Articles:     articles,
	}, "", "  ")
	if err != nil {
		return err
	}

	key := a.Key(now, a.newID())
	if err := a.objects.Put(ctx, a.bucket, key, bytes.NewReader(b), "application/json", "public, max-age=300"); err != nil {
		if code := common.ErrorCode(err); code != "" {
			return fmt.Errorf("uploading %s (%s): %w", key, code, err)
		}
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	log.Printf("☁️  Snapshot uploaded: %s (%d articles)", key, len(articles))
	return nil
}
