package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
)

type fakeObjectStore struct {
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, data []byte, contentType string) error {
	if f.failPut != nil {
		return f.failPut
	}
	if _, ok := f.objects[key]; ok {
		return ErrObjectExists
	}
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjectStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, ok := f.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "https://files.test/" + key + "?signed", nil
}

func (f *fakeObjectStore) Bucket() string { return "sop-files" }

func TestUploadKeyFormat(t *testing.T) {
	store := newFakeObjectStore()
	up := NewUploader(store)

	att, err := up.Upload(context.Background(), "u1", "d1", "hospital-info", answers.Blob{
		Name:        "my logo file.png",
		ContentType: "image/png",
		Data:        []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	pattern := regexp.MustCompile(`^u1/d1/hospital-info/[0-9a-f]{12}-my_logo_file\.png$`)
	if !pattern.MatchString(att.StoragePath) {
		t.Errorf("StoragePath = %q, want match of %v", att.StoragePath, pattern)
	}
	if att.Bucket != "sop-files" || att.Size != 3 || att.ContentType != "image/png" || att.Name != "my logo file.png" {
		t.Errorf("attachment metadata mismatch: %+v", att)
	}
	if _, ok := store.objects[att.StoragePath]; !ok {
		t.Error("object not written under returned key")
	}
}

func TestUploadMissingIdentifiers(t *testing.T) {
	up := NewUploader(newFakeObjectStore())
	if _, err := up.Upload(context.Background(), "", "d1", "s1", answers.Blob{Name: "x"}); err == nil {
		t.Error("missing owner id accepted")
	}
	if _, err := up.Upload(context.Background(), "u1", "", "s1", answers.Blob{Name: "x"}); err == nil {
		t.Error("missing draft id accepted")
	}
}

func TestUploadPropagatesStorageFailure(t *testing.T) {
	store := newFakeObjectStore()
	store.failPut = errors.New("quota exceeded")
	up := NewUploader(store)

	if _, err := up.Upload(context.Background(), "u1", "d1", "s1", answers.Blob{Name: "x"}); err == nil {
		t.Error("storage failure swallowed")
	}
	if len(store.objects) != 0 {
		t.Error("object written despite failure")
	}
}

func TestForBindsDestination(t *testing.T) {
	store := newFakeObjectStore()
	up := NewUploader(store)
	fn := up.For("u1", "d9", "policies-procedures")

	att, err := fn(context.Background(), answers.Blob{Name: "checklist.pdf", Data: []byte{1}})
	if err != nil {
		t.Fatalf("upload func error = %v", err)
	}
	prefix := regexp.MustCompile(`^u1/d9/policies-procedures/`)
	if !prefix.MatchString(att.StoragePath) {
		t.Errorf("StoragePath = %q, want destination prefix", att.StoragePath)
	}
}
