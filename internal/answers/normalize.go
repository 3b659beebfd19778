package answers

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// UploadFunc stores one binary and returns its storage metadata.
type UploadFunc func(ctx context.Context, blob Blob) (Attachment, error)

// UploadError reports which field's binary failed to upload. The save
// protocol aborts before any persistence write when it sees one.
type UploadError struct {
	FieldPath string
	Err       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload attachment at %s: %v", e.FieldPath, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Normalize walks the answer tree depth-first and replaces every Blob with
// the Attachment returned by upload. Blob lists fan out concurrently but the
// whole call fails if any element fails, so no partial list is ever returned.
// The result is a structurally independent copy; the input tree is untouched
// either way.
func Normalize(ctx context.Context, tree Tree, upload UploadFunc) (Tree, error) {
	out := make(Tree, len(tree))
	for field, value := range tree {
		normalized, err := normalizeValue(ctx, value, upload, field)
		if err != nil {
			return nil, err
		}
		out[field] = normalized
	}
	return out, nil
}

func normalizeValue(ctx context.Context, v Value, upload UploadFunc, path string) (Value, error) {
	switch v.Kind {
	case KindBlob:
		att, err := upload(ctx, *v.Blob)
		if err != nil {
			return Value{}, &UploadError{FieldPath: path, Err: err}
		}
		return Stored(att), nil

	case KindBlobList:
		uploaded := make([]Value, len(v.List))
		g, gctx := errgroup.WithContext(ctx)
		for i, item := range v.List {
			g.Go(func() error {
				att, err := upload(gctx, *item.Blob)
				if err != nil {
					return &UploadError{FieldPath: path + "." + strconv.Itoa(i), Err: err}
				}
				uploaded[i] = Stored(att)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindAttachmentList, List: uploaded}, nil

	case KindRecordList, KindScalarList, KindAttachmentList:
		list := make([]Value, len(v.List))
		for i, item := range v.List {
			normalized, err := normalizeValue(ctx, item, upload, path+"."+strconv.Itoa(i))
			if err != nil {
				return Value{}, err
			}
			list[i] = normalized
		}
		return Value{Kind: v.Kind, List: list}, nil

	case KindRecord:
		record := make(map[string]Value, len(v.Record))
		for _, key := range v.SortedKeys() {
			normalized, err := normalizeValue(ctx, v.Record[key], upload, path+"."+key)
			if err != nil {
				return Value{}, err
			}
			record[key] = normalized
		}
		return RecordValue(record), nil

	default:
		return v.Clone(), nil
	}
}
