// Package staging moves uploaded files from the per-user temporary
// staging path to the permanent document-scoped path when a workflow
// action is accepted. A move is copy + delete; replays of an
// already-moved file are tolerated so trigger retries stay idempotent.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/storage"

	"github.com/sitewalk/submittalflow/internal/models"
)

// Mover operates on a single bucket holding both staged and permanent
// objects.
type Mover struct {
	bucket *storage.BucketHandle
	// PublicBaseURL is prefixed onto permanent paths to form the URL
	// recorded on workflow entries.
	publicBaseURL string
}

// NewMover wraps an injected bucket handle.
func NewMover(client *storage.Client, bucketName, publicBaseURL string) *Mover {
	return &Mover{bucket: client.Bucket(bucketName), publicBaseURL: publicBaseURL}
}

// StagedPath is where a user's pending upload lives.
func StagedPath(userID, fileID string) string {
	return fmt.Sprintf("staging/%s/%s", userID, fileID)
}

// PermanentPath is the document-scoped destination of an accepted file.
func PermanentPath(siteID, documentNumber, fileName string) string {
	return fmt.Sprintf("sites/%s/documents/%s/%s", siteID, documentNumber, fileName)
}

// MoveAll relocates every staged file to the document's permanent path
// and returns the resulting references. Partial failure aborts: the
// caller must not commit a workflow entry pointing at unmoved files.
func (m *Mover) MoveAll(ctx context.Context, siteID, documentNumber string, files []models.StagedFile) ([]models.FileRef, error) {
	refs := make([]models.FileRef, 0, len(files))
	for _, f := range files {
		dst := PermanentPath(siteID, documentNumber, f.FileName)
		if err := m.move(ctx, f.StagedPath, dst); err != nil {
			return nil, fmt.Errorf("move %s: %w", f.FileName, err)
		}
		refs = append(refs, models.FileRef{
			FileName: f.FileName,
			Path:     dst,
			URL:      m.publicBaseURL + "/" + dst,
		})
	}
	return refs, nil
}

// move copies src to dst and deletes the original. A missing source
// with an existing destination means a replay of a completed move.
func (m *Mover) move(ctx context.Context, src, dst string) error {
	srcObj := m.bucket.Object(src)
	dstObj := m.bucket.Object(dst)

	if _, err := dstObj.CopierFrom(srcObj).Run(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			if _, attrsErr := dstObj.Attrs(ctx); attrsErr == nil {
				log.Printf("[File: %s] SKIPPING: already moved to %s", src, dst)
				return nil
			}
		}
		return fmt.Errorf("copy to %s: %w", dst, err)
	}

	if err := srcObj.Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		// The copy landed; a lingering staged original is harmless but
		// worth a trace.
		log.Printf("[File: %s] WARNING: staged original not deleted: %v", src, err)
	}
	return nil
}
