package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
	"github.com/MahiShah30/hospital-sop-generator/internal/autosave"
	"github.com/MahiShah30/hospital-sop-generator/internal/config"
	"github.com/MahiShah30/hospital-sop-generator/internal/email"
	"github.com/MahiShah30/hospital-sop-generator/internal/export"
	"github.com/MahiShah30/hospital-sop-generator/internal/schema"
	"github.com/MahiShah30/hospital-sop-generator/internal/search"
	"github.com/MahiShah30/hospital-sop-generator/internal/storage"
	"github.com/MahiShah30/hospital-sop-generator/internal/store"
)

type fakeDataStore struct {
	users      map[string]store.User
	drafts     map[string]store.Draft
	records    map[string]store.SectionRecord
	calls      []string
	failMerge  error
	failUpsert error
}

func newFakeDataStore() *fakeDataStore {
	return &fakeDataStore{
		users:   make(map[string]store.User),
		drafts:  make(map[string]store.Draft),
		records: make(map[string]store.SectionRecord),
	}
}

func (f *fakeDataStore) Ping(ctx context.Context) error { return nil }

func (f *fakeDataStore) GetUserByID(_ context.Context, id string) (store.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return store.User{}, store.ErrNotFound
}

func (f *fakeDataStore) GetUserByEmail(_ context.Context, emailAddr string) (store.User, error) {
	for _, user := range f.users {
		if user.Email == emailAddr {
			return user, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (f *fakeDataStore) CreateDraft(_ context.Context, draft store.Draft) error {
	draft.CreatedAt = time.Now()
	draft.UpdatedAt = draft.CreatedAt
	f.drafts[draft.ID] = draft
	return nil
}

func (f *fakeDataStore) ListDrafts(_ context.Context, ownerID string) ([]store.Draft, error) {
	var out []store.Draft
	for _, draft := range f.drafts {
		if draft.OwnerID == ownerID {
			out = append(out, draft)
		}
	}
	return out, nil
}

func (f *fakeDataStore) GetDraft(_ context.Context, ownerID, draftID string) (store.Draft, error) {
	draft, ok := f.drafts[draftID]
	if !ok || draft.OwnerID != ownerID {
		return store.Draft{}, store.ErrNotFound
	}
	return draft, nil
}

func (f *fakeDataStore) UpdateDraftStatus(_ context.Context, ownerID, draftID, status string) error {
	f.calls = append(f.calls, "status:"+status)
	draft, ok := f.drafts[draftID]
	if !ok || draft.OwnerID != ownerID {
		return store.ErrNotFound
	}
	draft.Status = status
	f.drafts[draftID] = draft
	return nil
}

func (f *fakeDataStore) MergeDraftSection(_ context.Context, ownerID, draftID, sectionID string, completed bool) error {
	f.calls = append(f.calls, "merge:"+sectionID)
	if f.failMerge != nil {
		return f.failMerge
	}
	draft, ok := f.drafts[draftID]
	if !ok || draft.OwnerID != ownerID {
		return store.ErrNotFound
	}
	if draft.Sections == nil {
		draft.Sections = map[string]bool{}
	}
	draft.Sections[sectionID] = completed
	f.drafts[draftID] = draft
	return nil
}

func (f *fakeDataStore) SetDraftSections(_ context.Context, ownerID, draftID string, sections map[string]bool) error {
	f.calls = append(f.calls, "set-sections")
	draft, ok := f.drafts[draftID]
	if !ok || draft.OwnerID != ownerID {
		return store.ErrNotFound
	}
	draft.Sections = sections
	f.drafts[draftID] = draft
	return nil
}

func (f *fakeDataStore) SetDraftOutput(_ context.Context, ownerID, draftID string, output store.OutputRef) error {
	f.calls = append(f.calls, "set-output")
	draft, ok := f.drafts[draftID]
	if !ok || draft.OwnerID != ownerID {
		return store.ErrNotFound
	}
	draft.LastOutput = &output
	draft.Status = store.StatusGenerated
	f.drafts[draftID] = draft
	return nil
}

func (f *fakeDataStore) UpsertSectionRecord(_ context.Context, record store.SectionRecord) error {
	f.calls = append(f.calls, "upsert:"+record.SectionID)
	if f.failUpsert != nil {
		return f.failUpsert
	}
	record.LastSavedAt = time.Now()
	f.records[record.DraftID+"/"+record.SectionID] = record
	return nil
}

func (f *fakeDataStore) GetSectionRecord(_ context.Context, ownerID, draftID, sectionID string) (store.SectionRecord, error) {
	record, ok := f.records[draftID+"/"+sectionID]
	if !ok || record.OwnerID != ownerID {
		return store.SectionRecord{}, store.ErrNotFound
	}
	return record, nil
}

func (f *fakeDataStore) ListSectionRecords(_ context.Context, ownerID, draftID string) ([]store.SectionRecord, error) {
	var out []store.SectionRecord
	for _, record := range f.records {
		if record.OwnerID == ownerID && record.DraftID == draftID {
			out = append(out, record)
		}
	}
	return out, nil
}

type fakeObjectStore struct {
	objects map[string][]byte
	failPut error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if f.failPut != nil {
		return f.failPut
	}
	if _, ok := f.objects[key]; ok {
		return fmt.Errorf("%w: %s", storage.ErrObjectExists, key)
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/" + key + "?signed", nil
}

func (f *fakeObjectStore) Bucket() string { return "sop-files-test" }

type fakeSessionStore struct {
	sessions map[string]store.User
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]store.User)}
}

func (f *fakeSessionStore) SaveRefreshSession(_ context.Context, tokenHash string, user store.User, _ time.Time) error {
	f.sessions[tokenHash] = user
	return nil
}

func (f *fakeSessionStore) LookupRefreshSession(_ context.Context, tokenHash string) (store.User, error) {
	if user, ok := f.sessions[tokenHash]; ok {
		return user, nil
	}
	return store.User{}, errors.New("token not found or expired")
}

func (f *fakeSessionStore) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(_ context.Context, html, title string) (*export.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &export.Result{
		Data:     []byte("%PDF-1.4 " + title + " " + html[:20]),
		Filename: "document.pdf",
		MimeType: "application/pdf",
	}, nil
}

func newTestService(t *testing.T) (*Service, *fakeDataStore, *fakeObjectStore, *fakeSessionStore, *fakeRenderer) {
	t.Helper()
	registry := schema.Load()
	ds := newFakeDataStore()
	objects := newFakeObjectStore()
	sessions := newFakeSessionStore()
	renderer := &fakeRenderer{}

	svc := &Service{
		cfg: config.Config{
			JWTSecret:    "test-secret",
			AccessTTL:    15 * time.Minute,
			RefreshTTL:   30 * 24 * time.Hour,
			SignedURLTTL: time.Hour,
		},
		store:    ds,
		sessions: sessions,
		registry: registry,
		uploader: storage.NewUploader(objects),
		objects:  objects,
		compiler: export.NewCompiler(registry, nil),
		renderer: renderer,
		search:   search.NewService(nil, nil),
		reindex:  autosave.New(autosave.DefaultDelay),
		mailer:   email.NewService(email.Config{}),
	}
	t.Cleanup(svc.Close)
	return svc, ds, objects, sessions, renderer
}

func seedDraft(ds *fakeDataStore) (Session, string) {
	owner := store.User{ID: "user_1", DisplayName: "Dr. Patel", Email: "dr.patel@hospital.test", IsEmailVerified: true}
	ds.users[owner.ID] = owner
	ds.drafts["draft_1"] = store.Draft{
		ID:       "draft_1",
		OwnerID:  owner.ID,
		Title:    "ER Triage SOP",
		Status:   store.StatusDraft,
		Sections: map[string]bool{},
	}
	return Session{UserID: owner.ID, UserName: owner.DisplayName, Email: owner.Email}, "draft_1"
}

func assertDomainStatus(t *testing.T, err error, status int) {
	t.Helper()
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.Status != status {
		t.Errorf("status = %d, want %d (code %s)", domainErr.Status, status, domainErr.Code)
	}
}

func TestSaveSectionPersistsRecordAndAggregate(t *testing.T) {
	svc, ds, objects, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	tree := answers.Tree{
		"hospitalName": answers.String("City General Hospital"),
		"logo": answers.FileValue(answers.Blob{
			Name:        "logo.png",
			ContentType: "image/png",
			Data:        []byte{0x89, 0x50, 0x4e, 0x47},
		}),
	}

	payload, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", tree, 1.0)
	if err != nil {
		t.Fatalf("SaveSection() error = %v", err)
	}
	if payload["completed"] != true {
		t.Error("expected completed true at progress 1.0")
	}
	if payload["aggregateUpdated"] != true {
		t.Error("expected aggregateUpdated true")
	}

	record, ok := ds.records["draft_1/hospital-info"]
	if !ok {
		t.Fatal("section record not persisted")
	}
	logo := record.Answers["logo"]
	if logo.Kind != answers.KindAttachment {
		t.Fatalf("logo kind = %v, want attachment", logo.Kind)
	}
	if logo.Attachment.Bucket != "sop-files-test" {
		t.Errorf("attachment bucket = %q", logo.Attachment.Bucket)
	}
	if len(objects.objects) != 1 {
		t.Errorf("stored objects = %d, want 1", len(objects.objects))
	}
	if !ds.drafts[draftID].Sections["hospital-info"] {
		t.Error("draft aggregate not updated")
	}
}

func TestSaveSectionRecordBeforeAggregate(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	_, err := svc.SaveSection(context.Background(), sess, draftID, "purpose-scope", answers.Tree{
		"purpose": answers.String("Standardize triage"),
	}, 0.4)
	if err != nil {
		t.Fatalf("SaveSection() error = %v", err)
	}

	upsertAt, mergeAt := -1, -1
	for i, call := range ds.calls {
		if strings.HasPrefix(call, "upsert:") {
			upsertAt = i
		}
		if strings.HasPrefix(call, "merge:") {
			mergeAt = i
		}
	}
	if upsertAt == -1 || mergeAt == -1 || upsertAt > mergeAt {
		t.Errorf("expected record upsert before aggregate merge, calls = %v", ds.calls)
	}
}

func TestSaveSectionUnknownSection(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	_, err := svc.SaveSection(context.Background(), sess, draftID, "summary-closure", answers.Tree{}, 0.5)
	assertDomainStatus(t, err, 404)
	if len(ds.calls) != 0 {
		t.Errorf("expected no store calls, got %v", ds.calls)
	}
}

func TestSaveSectionInvalidProgress(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	for _, progress := range []float64{-0.1, 1.5} {
		_, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{}, progress)
		assertDomainStatus(t, err, 422)
	}
}

func TestSaveSectionUploadFailureWritesNothing(t *testing.T) {
	svc, ds, objects, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)
	objects.failPut = errors.New("object store unreachable")

	tree := answers.Tree{
		"hospitalName": answers.String("City General Hospital"),
		"logo":         answers.FileValue(answers.Blob{Name: "logo.png", Data: []byte{1}}),
	}
	_, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", tree, 1.0)
	assertDomainStatus(t, err, 502)

	if len(ds.records) != 0 {
		t.Error("section record persisted despite upload failure")
	}
	for _, call := range ds.calls {
		if strings.HasPrefix(call, "upsert:") || strings.HasPrefix(call, "merge:") {
			t.Errorf("unexpected write call %q after upload failure", call)
		}
	}
}

func TestSaveSectionAggregateFailureKeepsRecord(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)
	ds.failMerge = errors.New("deadlock detected")

	payload, err := svc.SaveSection(context.Background(), sess, draftID, "quality-kpis", answers.Tree{
		"expectedTAT": answers.String("30 minutes"),
	}, 1.0)
	if err != nil {
		t.Fatalf("SaveSection() error = %v, want nil with stale aggregate", err)
	}
	if payload["aggregateUpdated"] != false {
		t.Error("expected aggregateUpdated false")
	}
	if _, ok := ds.records["draft_1/quality-kpis"]; !ok {
		t.Error("section record should survive aggregate failure")
	}
}

func TestSaveSectionCompletedThreshold(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	tests := []struct {
		progress float64
		want     bool
	}{
		{1.0, true},
		{0.99, true},
		{0.98, false},
		{0.0, false},
	}
	for _, tt := range tests {
		payload, err := svc.SaveSection(context.Background(), sess, draftID, "training-compliance", answers.Tree{}, tt.progress)
		if err != nil {
			t.Fatalf("SaveSection(progress=%v) error = %v", tt.progress, err)
		}
		if payload["completed"] != tt.want {
			t.Errorf("progress %v: completed = %v, want %v", tt.progress, payload["completed"], tt.want)
		}
	}
}

func TestSaveSectionArchivedDraft(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)
	draft := ds.drafts[draftID]
	draft.Status = store.StatusArchived
	ds.drafts[draftID] = draft

	_, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{}, 0.5)
	assertDomainStatus(t, err, 409)
}

func TestSaveSectionAdvancesStatus(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	_, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{}, 0.3)
	if err != nil {
		t.Fatalf("SaveSection() error = %v", err)
	}
	if got := ds.drafts[draftID].Status; got != store.StatusInProgress {
		t.Errorf("status after first save = %q, want %q", got, store.StatusInProgress)
	}

	for _, sectionID := range svc.registry.SectionIDs() {
		if _, err := svc.SaveSection(context.Background(), sess, draftID, sectionID, answers.Tree{}, 1.0); err != nil {
			t.Fatalf("SaveSection(%s) error = %v", sectionID, err)
		}
	}
	if got := ds.drafts[draftID].Status; got != store.StatusReady {
		t.Errorf("status with all sections complete = %q, want %q", got, store.StatusReady)
	}
}

func TestGetSectionMissingReturnsEmpty(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	payload, err := svc.GetSection(context.Background(), sess.UserID, draftID, "policies-procedures")
	if err != nil {
		t.Fatalf("GetSection() error = %v", err)
	}
	if payload["progress"] != 0.0 || payload["completed"] != false {
		t.Errorf("expected zero-value section, got %v", payload)
	}
	tree, ok := payload["answers"].(answers.Tree)
	if !ok || len(tree) != 0 {
		t.Errorf("expected empty answers tree, got %v", payload["answers"])
	}
}

func TestGetDraftListsAllSections(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	if _, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{}, 1.0); err != nil {
		t.Fatalf("SaveSection() error = %v", err)
	}

	payload, err := svc.GetDraft(context.Background(), sess.UserID, draftID)
	if err != nil {
		t.Fatalf("GetDraft() error = %v", err)
	}
	sections, ok := payload["sections"].([]map[string]any)
	if !ok {
		t.Fatalf("sections payload has wrong shape: %T", payload["sections"])
	}
	if len(sections) != svc.registry.Len() {
		t.Errorf("sections listed = %d, want %d", len(sections), svc.registry.Len())
	}
	if sections[0]["id"] != "hospital-info" || sections[0]["completed"] != true {
		t.Errorf("first section = %v", sections[0])
	}
	if payload["progress"] != 10 {
		t.Errorf("progress = %v, want 10", payload["progress"])
	}
}

func TestCompileDraft(t *testing.T) {
	svc, ds, objects, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	for _, sectionID := range []string{"hospital-info", "purpose-scope"} {
		if _, err := svc.SaveSection(context.Background(), sess, draftID, sectionID, answers.Tree{
			"summary": answers.String("content for " + sectionID),
		}, 1.0); err != nil {
			t.Fatalf("SaveSection(%s) error = %v", sectionID, err)
		}
	}

	payload, err := svc.CompileDraft(context.Background(), sess, draftID, export.FormatPDF)
	if err != nil {
		t.Fatalf("CompileDraft() error = %v", err)
	}
	if payload["status"] != store.StatusGenerated {
		t.Errorf("status = %v, want %v", payload["status"], store.StatusGenerated)
	}
	url, _ := payload["downloadUrl"].(string)
	if !strings.HasPrefix(url, "https://files.test/user_1/draft_1/outputs/") {
		t.Errorf("downloadUrl = %q", url)
	}

	draft := ds.drafts[draftID]
	if draft.LastOutput == nil {
		t.Fatal("draft output not recorded")
	}
	if draft.LastOutput.Format != "pdf" || draft.LastOutput.Bucket != "sop-files-test" {
		t.Errorf("output ref = %+v", draft.LastOutput)
	}
	if _, ok := objects.objects[draft.LastOutput.Path]; !ok {
		t.Error("compiled artifact not stored")
	}
}

func TestCompileDraftHTMLFormat(t *testing.T) {
	svc, ds, objects, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	if _, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{
		"hospitalName": answers.String("City General Hospital"),
	}, 1.0); err != nil {
		t.Fatalf("SaveSection() error = %v", err)
	}

	payload, err := svc.CompileDraft(context.Background(), sess, draftID, export.FormatHTML)
	if err != nil {
		t.Fatalf("CompileDraft() error = %v", err)
	}
	filename, _ := payload["filename"].(string)
	if !strings.HasSuffix(filename, ".html") {
		t.Errorf("filename = %q, want .html suffix", filename)
	}
	draft := ds.drafts[draftID]
	data := objects.objects[draft.LastOutput.Path]
	if !strings.Contains(string(data), "City General Hospital") {
		t.Error("stored HTML missing answer content")
	}
}

func TestCompileDraftNoSections(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	_, err := svc.CompileDraft(context.Background(), sess, draftID, export.FormatPDF)
	assertDomainStatus(t, err, 422)
	if got := ds.drafts[draftID].Status; got != store.StatusDraft {
		t.Errorf("status touched on rejected compile: %q", got)
	}
}

func TestCompileDraftRendererUnavailable(t *testing.T) {
	svc, ds, _, _, renderer := newTestService(t)
	sess, draftID := seedDraft(ds)
	renderer.err = fmt.Errorf("launch chromium: %w", export.ErrPDFDependencyMissing)

	if _, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{}, 1.0); err != nil {
		t.Fatalf("SaveSection() error = %v", err)
	}
	previous := ds.drafts[draftID].Status

	_, err := svc.CompileDraft(context.Background(), sess, draftID, export.FormatPDF)
	assertDomainStatus(t, err, 503)
	if got := ds.drafts[draftID].Status; got != previous {
		t.Errorf("status = %q, want reverted to %q", got, previous)
	}
}

func TestRepairDraftRebuildsAggregate(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)
	ds.failMerge = errors.New("deadlock detected")

	if _, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{}, 1.0); err != nil {
		t.Fatalf("SaveSection() error = %v", err)
	}
	if len(ds.drafts[draftID].Sections) != 0 {
		t.Fatal("precondition: aggregate should be stale")
	}

	ds.failMerge = nil
	payload, err := svc.RepairDraft(context.Background(), sess.UserID, draftID)
	if err != nil {
		t.Fatalf("RepairDraft() error = %v", err)
	}
	if !ds.drafts[draftID].Sections["hospital-info"] {
		t.Error("repair did not rebuild the completion map")
	}
	if payload["progress"] != 10 {
		t.Errorf("progress = %v, want 10", payload["progress"])
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc, ds, _, sessions, _ := newTestService(t)
	owner := store.User{ID: "user_1", DisplayName: "Dr. Patel", Email: "dr.patel@hospital.test", IsEmailVerified: true}
	ds.users[owner.ID] = owner

	sess, err := svc.issueSession(context.Background(), owner)
	if err != nil {
		t.Fatalf("issueSession() error = %v", err)
	}
	if sess.Token == "" || sess.RefreshToken == "" {
		t.Fatal("expected both tokens issued")
	}

	parsed, err := svc.SessionFromToken(context.Background(), sess.Token)
	if err != nil {
		t.Fatalf("SessionFromToken() error = %v", err)
	}
	if parsed.UserID != owner.ID || parsed.Email != owner.Email {
		t.Errorf("parsed session = %+v", parsed)
	}

	refreshed, err := svc.Refresh(context.Background(), sess.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refreshed.RefreshToken == sess.RefreshToken {
		t.Error("refresh should rotate the refresh token")
	}
	// Old refresh token is revoked by rotation.
	if _, err := svc.Refresh(context.Background(), sess.RefreshToken); err == nil {
		t.Error("expected revoked refresh token to be rejected")
	}

	if err := svc.Logout(context.Background(), refreshed.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Errorf("refresh sessions remaining after logout: %d", len(sessions.sessions))
	}
}

func TestSetDraftStatus(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	payload, err := svc.SetDraftStatus(context.Background(), sess.UserID, draftID, store.StatusArchived)
	if err != nil {
		t.Fatalf("SetDraftStatus() error = %v", err)
	}
	if payload["status"] != store.StatusArchived {
		t.Errorf("status = %v, want archived", payload["status"])
	}

	// Archived drafts reject saves until restored.
	_, err = svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{}, 0.5)
	assertDomainStatus(t, err, 409)

	if _, err := svc.SetDraftStatus(context.Background(), sess.UserID, draftID, store.StatusInProgress); err != nil {
		t.Fatalf("restore error = %v", err)
	}
	if _, err := svc.SaveSection(context.Background(), sess, draftID, "hospital-info", answers.Tree{}, 0.5); err != nil {
		t.Errorf("save after restore error = %v", err)
	}

	// Compile owns the generating/generated pair.
	_, err = svc.SetDraftStatus(context.Background(), sess.UserID, draftID, store.StatusGenerated)
	assertDomainStatus(t, err, 422)
}

func TestSuggestionsUnavailableWithoutAdvisor(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, draftID := seedDraft(ds)

	_, err := svc.Suggestions(context.Background(), sess.UserID, draftID)
	assertDomainStatus(t, err, 503)
}

func TestCreateDraftDefaults(t *testing.T) {
	svc, ds, _, _, _ := newTestService(t)
	sess, _ := seedDraft(ds)

	payload, err := svc.CreateDraft(context.Background(), sess, "   ")
	if err != nil {
		t.Fatalf("CreateDraft() error = %v", err)
	}
	if payload["title"] != "Untitled SOP" {
		t.Errorf("title = %v, want default", payload["title"])
	}
	if payload["status"] != store.StatusDraft {
		t.Errorf("status = %v", payload["status"])
	}
	if payload["nextSection"] != "hospital-info" {
		t.Errorf("nextSection = %v, want hospital-info", payload["nextSection"])
	}
}
