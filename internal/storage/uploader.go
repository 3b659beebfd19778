package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
	"github.com/MahiShah30/hospital-sop-generator/internal/util"
)

// Uploader stores answer attachments under deterministic per-section keys.
// It knows nothing about form structure; the normalizer hands it blobs one at
// a time.
type Uploader struct {
	store ObjectStore
}

func NewUploader(store ObjectStore) *Uploader {
	return &Uploader{store: store}
}

// Upload writes one attachment and returns its metadata. The random suffix
// keeps repeated uploads of the same filename from colliding; an actual key
// collision surfaces as an error rather than overwriting.
func (u *Uploader) Upload(ctx context.Context, ownerID, draftID, sectionID string, blob answers.Blob) (answers.Attachment, error) {
	if ownerID == "" || draftID == "" || sectionID == "" {
		return answers.Attachment{}, fmt.Errorf("upload: missing owner, draft or section id")
	}

	key := fmt.Sprintf("%s/%s/%s/%s-%s", ownerID, draftID, sectionID, util.Suffix(), sanitizeObjectName(blob.Name))
	if err := u.store.Put(ctx, key, blob.Data, blob.ContentType); err != nil {
		return answers.Attachment{}, err
	}

	return answers.Attachment{
		Name:        blob.Name,
		Size:        int64(len(blob.Data)),
		ContentType: blob.ContentType,
		StoragePath: key,
		Bucket:      u.store.Bucket(),
	}, nil
}

// For binds an upload destination, producing the callback shape the answer
// normalizer consumes.
func (u *Uploader) For(ownerID, draftID, sectionID string) answers.UploadFunc {
	return func(ctx context.Context, blob answers.Blob) (answers.Attachment, error) {
		return u.Upload(ctx, ownerID, draftID, sectionID, blob)
	}
}

func sanitizeObjectName(name string) string {
	if name == "" {
		return "attachment"
	}
	return strings.Join(strings.Fields(name), "_")
}
