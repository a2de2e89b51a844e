package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

type (
	// Archive persists terminal executions and generated reports outside
	// the engine's working set
	Archive interface {
		PutExecution(ctx context.Context, ex *api.WorkflowExecution) error
		GetExecution(
			ctx context.Context, id api.ExecutionID,
		) (*api.WorkflowExecution, error)
		PutReport(ctx context.Context, report *api.AnalyticsReport) error
		Close() error
	}

	// BlobArchive stores JSON documents in a blob bucket. The bucket URL
	// selects the driver (mem://, file://, or a cloud scheme).
	BlobArchive struct {
		bucket *blob.Bucket
	}
)

var ErrArchiveNotFound = errors.New("not found in archive")

// OpenBlobArchive opens the bucket named by the URL
func OpenBlobArchive(ctx context.Context, url string) (*BlobArchive, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, err
	}
	return &BlobArchive{bucket: bucket}, nil
}

// PutExecution writes a terminal execution under executions/<id>.json
func (a *BlobArchive) PutExecution(
	ctx context.Context, ex *api.WorkflowExecution,
) error {
	return a.putJSON(ctx, executionKey(ex.ID), ex)
}

// GetExecution reads an archived execution back
func (a *BlobArchive) GetExecution(
	ctx context.Context, id api.ExecutionID,
) (*api.WorkflowExecution, error) {
	buf, err := a.bucket.ReadAll(ctx, executionKey(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrArchiveNotFound, id)
	}
	var ex api.WorkflowExecution
	if err := json.Unmarshal(buf, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}

// PutReport writes an analytics report under reports/<window>/<time>.json
func (a *BlobArchive) PutReport(
	ctx context.Context, report *api.AnalyticsReport,
) error {
	key := fmt.Sprintf("reports/%s/%s.json",
		report.Window, report.GeneratedAt.UTC().Format(time.RFC3339))
	return a.putJSON(ctx, key, report)
}

// Close releases the bucket
func (a *BlobArchive) Close() error {
	return a.bucket.Close()
}

func (a *BlobArchive) putJSON(
	ctx context.Context, key string, v any,
) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return a.bucket.WriteAll(ctx, key, buf, &blob.WriterOptions{
		ContentType: "application/json",
	})
}

func executionKey(id api.ExecutionID) string {
	return fmt.Sprintf("executions/%s.json", id)
}
