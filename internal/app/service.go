package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
	"github.com/MahiShah30/hospital-sop-generator/internal/auth"
	"github.com/MahiShah30/hospital-sop-generator/internal/authpw"
	"github.com/MahiShah30/hospital-sop-generator/internal/autosave"
	"github.com/MahiShah30/hospital-sop-generator/internal/config"
	"github.com/MahiShah30/hospital-sop-generator/internal/email"
	"github.com/MahiShah30/hospital-sop-generator/internal/export"
	"github.com/MahiShah30/hospital-sop-generator/internal/schema"
	"github.com/MahiShah30/hospital-sop-generator/internal/search"
	"github.com/MahiShah30/hospital-sop-generator/internal/session"
	"github.com/MahiShah30/hospital-sop-generator/internal/storage"
	"github.com/MahiShah30/hospital-sop-generator/internal/store"
	"github.com/MahiShah30/hospital-sop-generator/internal/suggest"
	"github.com/MahiShah30/hospital-sop-generator/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	Email        string
	JTI          string
	ExpiresAt    time.Time
}

// completedThreshold is the progress value at or above which a section counts
// as complete, tolerating float rounding from percentage math.
const completedThreshold = 0.99

type dataStore interface {
	Ping(ctx context.Context) error
	GetUserByID(context.Context, string) (store.User, error)
	GetUserByEmail(context.Context, string) (store.User, error)
	CreateDraft(context.Context, store.Draft) error
	ListDrafts(context.Context, string) ([]store.Draft, error)
	GetDraft(context.Context, string, string) (store.Draft, error)
	UpdateDraftStatus(context.Context, string, string, string) error
	MergeDraftSection(context.Context, string, string, string, bool) error
	SetDraftSections(context.Context, string, string, map[string]bool) error
	SetDraftOutput(context.Context, string, string, store.OutputRef) error
	UpsertSectionRecord(context.Context, store.SectionRecord) error
	GetSectionRecord(context.Context, string, string, string) (store.SectionRecord, error)
	ListSectionRecords(context.Context, string, string) ([]store.SectionRecord, error)
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions session.Store
	registry schema.Registry
	uploader *storage.Uploader
	objects  storage.ObjectStore
	compiler *export.Compiler
	renderer export.Renderer
	search   *search.Service
	reindex  *autosave.Debouncer
	accounts *authpw.Service
	mailer   *email.Service
	advisor  *suggest.Service
}

func New(
	cfg config.Config,
	dataStore *store.PostgresStore,
	sessions session.Store,
	registry schema.Registry,
	objects storage.ObjectStore,
	compiler *export.Compiler,
	renderer export.Renderer,
	searchService *search.Service,
	accounts *authpw.Service,
	mailer *email.Service,
	advisor *suggest.Service,
) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: sessions,
		registry: registry,
		uploader: storage.NewUploader(objects),
		objects:  objects,
		compiler: compiler,
		renderer: renderer,
		search:   searchService,
		reindex:  autosave.New(autosave.DefaultDelay),
		accounts: accounts,
		mailer:   mailer,
		advisor:  advisor,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) SMTPConfigured() bool {
	return s.mailer != nil && s.mailer.IsConfigured()
}

// Close flushes the pending search reindex, if any.
func (s *Service) Close() {
	s.reindex.Stop()
}

func (s *Service) SignUp(ctx context.Context, emailAddr, password, displayName string) (map[string]any, error) {
	resp, err := s.accounts.SignUp(ctx, authpw.SignUpRequest{
		Email:       emailAddr,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, domainError(http.StatusUnprocessableEntity, "signup_failed", err.Error(), nil)
	}

	payload := map[string]any{
		"userId":         resp.UserID,
		"requiresVerify": resp.RequiresEmailVerify,
	}

	if s.SMTPConfigured() {
		verifyURL := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), resp.VerificationToken)
		if err := s.mailer.SendVerificationEmail(emailAddr, displayName, verifyURL); err != nil {
			log.Printf("app: send verification email to %s: %v", emailAddr, err)
		}
	} else {
		// No SMTP in dev: surface the token so the flow stays testable.
		payload["devVerificationToken"] = resp.VerificationToken
	}
	return payload, nil
}

func (s *Service) SignIn(ctx context.Context, emailAddr, password string) (Session, bool, error) {
	resp, err := s.accounts.SignIn(ctx, authpw.SignInRequest{Email: emailAddr, Password: password})
	if err != nil {
		return Session{}, false, domainError(http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	}
	if resp.RequiresVerify {
		return Session{}, true, nil
	}
	sess, err := s.issueSession(ctx, resp.User)
	if err != nil {
		return Session{}, false, err
	}
	return sess, false, nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if err := s.accounts.VerifyEmail(ctx, token); err != nil {
		return domainError(http.StatusUnprocessableEntity, "invalid_verification_token", err.Error(), nil)
	}
	return nil
}

func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) (map[string]any, error) {
	token, err := s.accounts.RequestPasswordReset(ctx, emailAddr)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"ok": true}
	if token == "" {
		// Unknown email; the response is indistinguishable on purpose.
		return payload, nil
	}

	if s.SMTPConfigured() {
		user, err := s.store.GetUserByEmail(ctx, emailAddr)
		if err == nil {
			resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.PublicBaseURL, "/"), token)
			if err := s.mailer.SendPasswordResetEmail(emailAddr, user.DisplayName, resetURL); err != nil {
				log.Printf("app: send password reset email to %s: %v", emailAddr, err)
			}
		}
	} else {
		payload["devResetToken"] = token
	}
	return payload, nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.accounts.ResetPassword(ctx, authpw.ResetPasswordRequest{Token: token, NewPassword: newPassword}); err != nil {
		return domainError(http.StatusUnprocessableEntity, "reset_failed", err.Error(), nil)
	}
	return nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, domainError(http.StatusUnauthorized, "invalid_refresh_token", "refresh token is invalid or expired", nil)
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.DisplayName,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		Email:        user.Email,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Email:     user.Email,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

func (s *Service) CreateDraft(ctx context.Context, sess Session, title string) (map[string]any, error) {
	draftTitle := strings.TrimSpace(title)
	if draftTitle == "" {
		draftTitle = "Untitled SOP"
	}

	draft := store.Draft{
		ID:       util.NewID("draft"),
		OwnerID:  sess.UserID,
		Title:    draftTitle,
		Status:   store.StatusDraft,
		Sections: map[string]bool{},
	}
	if err := s.store.CreateDraft(ctx, draft); err != nil {
		return nil, err
	}

	s.search.IndexDraft(search.DraftRecord{ID: draft.ID, OwnerID: draft.OwnerID, Title: draft.Title, Status: draft.Status})

	stored, err := s.store.GetDraft(ctx, sess.UserID, draft.ID)
	if err != nil {
		return nil, err
	}
	return s.draftPayload(stored), nil
}

func (s *Service) ListDrafts(ctx context.Context, ownerID string) ([]map[string]any, error) {
	drafts, err := s.store.ListDrafts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(drafts))
	for _, draft := range drafts {
		items = append(items, s.draftPayload(draft))
	}
	return items, nil
}

func (s *Service) GetDraft(ctx context.Context, ownerID, draftID string) (map[string]any, error) {
	draft, err := s.store.GetDraft(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListSectionRecords(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	recordsByID := make(map[string]store.SectionRecord, len(records))
	for _, rec := range records {
		recordsByID[rec.SectionID] = rec
	}

	sections := make([]map[string]any, 0, s.registry.Len())
	for _, id := range s.registry.SectionIDs() {
		def, _ := s.registry.Section(id)
		item := map[string]any{
			"id":        id,
			"title":     def.Title,
			"completed": draft.Sections[id],
			"progress":  0.0,
		}
		if rec, ok := recordsByID[id]; ok {
			item["progress"] = rec.Progress
			item["lastSavedAt"] = rec.LastSavedAt
		}
		sections = append(sections, item)
	}

	payload := s.draftPayload(draft)
	payload["sections"] = sections
	return payload, nil
}

func (s *Service) draftPayload(draft store.Draft) map[string]any {
	payload := map[string]any{
		"id":          draft.ID,
		"title":       draft.Title,
		"status":      draft.Status,
		"progress":    progressPercent(draft.Sections, s.registry.Len()),
		"nextSection": firstIncomplete(s.registry.SectionIDs(), draft.Sections),
		"createdAt":   draft.CreatedAt,
		"updatedAt":   draft.UpdatedAt,
	}
	if draft.LastOutput != nil {
		payload["lastOutput"] = map[string]any{
			"bucket": draft.LastOutput.Bucket,
			"path":   draft.LastOutput.Path,
			"format": draft.LastOutput.Format,
		}
	}
	return payload
}

// Statuses a client may set directly. The generating/generated pair is owned
// by the compile path.
var allowedStatusUpdates = map[string]struct{}{
	store.StatusDraft:      {},
	store.StatusInProgress: {},
	store.StatusReady:      {},
	store.StatusArchived:   {},
}

func (s *Service) SetDraftStatus(ctx context.Context, ownerID, draftID, status string) (map[string]any, error) {
	if _, ok := allowedStatusUpdates[status]; !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "invalid_status", "status cannot be set to "+status, nil)
	}
	if _, err := s.store.GetDraft(ctx, ownerID, draftID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateDraftStatus(ctx, ownerID, draftID, status); err != nil {
		return nil, err
	}
	draft, err := s.store.GetDraft(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	s.search.IndexDraft(search.DraftRecord{ID: draft.ID, OwnerID: draft.OwnerID, Title: draft.Title, Status: draft.Status})
	return s.draftPayload(draft), nil
}

func (s *Service) GetSection(ctx context.Context, ownerID, draftID, sectionID string) (map[string]any, error) {
	if !s.registry.Has(sectionID) {
		return nil, domainError(http.StatusNotFound, "unknown_section", "unknown section: "+sectionID, nil)
	}
	if _, err := s.store.GetDraft(ctx, ownerID, draftID); err != nil {
		return nil, err
	}

	rec, err := s.store.GetSectionRecord(ctx, ownerID, draftID, sectionID)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]any{
			"draftId":   draftID,
			"sectionId": sectionID,
			"answers":   answers.Tree{},
			"progress":  0.0,
			"completed": false,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"draftId":     rec.DraftID,
		"sectionId":   rec.SectionID,
		"answers":     rec.Answers,
		"progress":    rec.Progress,
		"completed":   rec.Completed,
		"lastSavedAt": rec.LastSavedAt,
	}, nil
}

// SaveSection runs the section-save protocol: validate, normalize attachments,
// persist the section record, then fold completion into the draft aggregate.
// The ordering is load-bearing: a failed upload aborts before any write, and a
// failed aggregate merge still leaves the section record saved.
func (s *Service) SaveSection(ctx context.Context, sess Session, draftID, sectionID string, tree answers.Tree, progress float64) (map[string]any, error) {
	if !s.registry.Has(sectionID) {
		return nil, domainError(http.StatusNotFound, "unknown_section", "unknown section: "+sectionID, nil)
	}
	if progress < 0 || progress > 1 {
		return nil, domainError(http.StatusUnprocessableEntity, "invalid_progress", "progress must be between 0 and 1", nil)
	}

	draft, err := s.store.GetDraft(ctx, sess.UserID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status == store.StatusArchived {
		return nil, domainError(http.StatusConflict, "draft_archived", "archived drafts are read-only", nil)
	}

	normalized, err := answers.Normalize(ctx, tree, s.uploader.For(sess.UserID, draftID, sectionID))
	if err != nil {
		var uploadErr *answers.UploadError
		if errors.As(err, &uploadErr) {
			return nil, domainError(http.StatusBadGateway, "upload_failed", uploadErr.Error(), map[string]any{"field": uploadErr.FieldPath})
		}
		return nil, err
	}

	completed := progress >= completedThreshold
	record := store.SectionRecord{
		OwnerID:   sess.UserID,
		DraftID:   draftID,
		SectionID: sectionID,
		Answers:   normalized,
		Progress:  progress,
		Completed: completed,
	}
	if err := s.store.UpsertSectionRecord(ctx, record); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"draftId":          draftID,
		"sectionId":        sectionID,
		"progress":         progress,
		"completed":        completed,
		"aggregateUpdated": true,
	}

	if err := s.store.MergeDraftSection(ctx, sess.UserID, draftID, sectionID, completed); err != nil {
		// The record is saved; the aggregate can be rebuilt with a repair.
		log.Printf("app: merge section %s into draft %s: %v", sectionID, draftID, err)
		payload["aggregateUpdated"] = false
		return payload, nil
	}

	s.advanceDraftStatus(ctx, draft, sectionID, completed)
	s.indexSection(sess.UserID, draftID, sectionID, normalized)
	s.reindex.Trigger(func() {
		s.search.ReindexAllFromPG(context.Background())
	})

	return payload, nil
}

// advanceDraftStatus bumps a draft from draft to in_progress on first save and
// to ready when every canonical section is complete. Best effort; the sections
// map is authoritative either way.
func (s *Service) advanceDraftStatus(ctx context.Context, draft store.Draft, sectionID string, completed bool) {
	merged := make(map[string]bool, len(draft.Sections)+1)
	for k, v := range draft.Sections {
		merged[k] = v
	}
	merged[sectionID] = completed

	next := draft.Status
	switch {
	case firstIncomplete(s.registry.SectionIDs(), merged) == "":
		next = store.StatusReady
	case draft.Status == store.StatusDraft:
		next = store.StatusInProgress
	case draft.Status == store.StatusReady:
		// A section dropped back below complete.
		next = store.StatusInProgress
	}
	if next == draft.Status {
		return
	}
	if err := s.store.UpdateDraftStatus(ctx, draft.OwnerID, draft.ID, next); err != nil {
		log.Printf("app: update draft %s status to %s: %v", draft.ID, next, err)
	}
}

func (s *Service) indexSection(ownerID, draftID, sectionID string, tree answers.Tree) {
	title := sectionID
	if def, err := s.registry.Section(sectionID); err == nil {
		title = def.Title
	}
	s.search.IndexSection(search.SectionRecord{
		ID:        draftID + "/" + sectionID,
		OwnerID:   ownerID,
		DraftID:   draftID,
		SectionID: sectionID,
		Title:     title,
		Body:      flattenAnswers(tree),
	})
}

// CompileDraft assembles every saved section into an HTML document and renders
// it in the requested format. Nothing is persisted unless rendering and the
// object write both succeed.
func (s *Service) CompileDraft(ctx context.Context, sess Session, draftID string, format export.Format) (map[string]any, error) {
	if format == "" {
		format = export.FormatPDF
	}
	if format != export.FormatPDF && format != export.FormatHTML {
		return nil, domainError(http.StatusUnprocessableEntity, "invalid_format", "format must be pdf or html", nil)
	}

	draft, err := s.store.GetDraft(ctx, sess.UserID, draftID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListSectionRecords(ctx, sess.UserID, draftID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domainError(http.StatusUnprocessableEntity, "nothing_to_compile", "draft has no saved sections", nil)
	}

	previousStatus := draft.Status
	if err := s.store.UpdateDraftStatus(ctx, sess.UserID, draftID, store.StatusGenerating); err != nil {
		return nil, err
	}
	revert := func() {
		if err := s.store.UpdateDraftStatus(ctx, sess.UserID, draftID, previousStatus); err != nil {
			log.Printf("app: revert draft %s status: %v", draftID, err)
		}
	}

	sections := make([]export.Section, 0, len(records))
	for _, rec := range records {
		sections = append(sections, export.Section{ID: rec.SectionID, Answers: rec.Answers})
	}
	html := s.compiler.BuildHTML(draft.Title, sections)

	var result *export.Result
	if format == export.FormatHTML {
		result = export.HTMLResult(html, draft.Title)
	} else {
		result, err = s.renderer.Render(ctx, html, draft.Title)
		if err != nil {
			revert()
			if errors.Is(err, export.ErrPDFDependencyMissing) {
				return nil, domainError(http.StatusServiceUnavailable, "renderer_unavailable", "PDF rendering is unavailable on this host", nil)
			}
			return nil, err
		}
	}

	key := fmt.Sprintf("%s/%s/outputs/%s-%s", sess.UserID, draftID, util.Suffix(), result.Filename)
	if err := s.objects.Put(ctx, key, result.Data, result.MimeType); err != nil {
		revert()
		return nil, err
	}

	output := store.OutputRef{Bucket: s.objects.Bucket(), Path: key, Format: string(format)}
	if err := s.store.SetDraftOutput(ctx, sess.UserID, draftID, output); err != nil {
		revert()
		return nil, err
	}

	downloadURL, err := s.objects.SignedURL(ctx, key, s.cfg.SignedURLTTL)
	if err != nil {
		return nil, err
	}

	if s.SMTPConfigured() && sess.Email != "" {
		if err := s.mailer.SendCompiledDocument(sess.Email, sess.UserName, draft.Title, downloadURL); err != nil {
			log.Printf("app: send compiled document email for draft %s: %v", draftID, err)
		}
	}

	s.search.IndexDraft(search.DraftRecord{ID: draft.ID, OwnerID: draft.OwnerID, Title: draft.Title, Status: store.StatusGenerated})

	return map[string]any{
		"draftId":          draftID,
		"status":           store.StatusGenerated,
		"format":           string(format),
		"filename":         result.Filename,
		"path":             key,
		"downloadUrl":      downloadURL,
		"expiresInSeconds": int(s.cfg.SignedURLTTL.Seconds()),
	}, nil
}

// RepairDraft rebuilds the draft's completion map from the section records,
// for aggregates left stale by a failed merge.
func (s *Service) RepairDraft(ctx context.Context, ownerID, draftID string) (map[string]any, error) {
	if _, err := s.store.GetDraft(ctx, ownerID, draftID); err != nil {
		return nil, err
	}
	records, err := s.store.ListSectionRecords(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	sections := make(map[string]bool, len(records))
	for _, rec := range records {
		sections[rec.SectionID] = rec.Completed
	}
	if err := s.store.SetDraftSections(ctx, ownerID, draftID, sections); err != nil {
		return nil, err
	}

	draft, err := s.store.GetDraft(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}
	return s.draftPayload(draft), nil
}

// Suggestions asks the AI advisor for improvements based on the draft's
// completed sections.
func (s *Service) Suggestions(ctx context.Context, ownerID, draftID string) ([]string, error) {
	if s.advisor == nil {
		return nil, domainError(http.StatusServiceUnavailable, "suggestions_unavailable", "AI suggestions are not configured", nil)
	}
	if _, err := s.store.GetDraft(ctx, ownerID, draftID); err != nil {
		return nil, err
	}
	records, err := s.store.ListSectionRecords(ctx, ownerID, draftID)
	if err != nil {
		return nil, err
	}

	inputs := make([]suggest.SectionInput, 0, len(records))
	for _, rec := range records {
		if !rec.Completed {
			continue
		}
		data, err := treeToMap(rec.Answers)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, suggest.SectionInput{SectionID: rec.SectionID, Data: data})
	}
	if len(inputs) == 0 {
		return nil, domainError(http.StatusUnprocessableEntity, "no_completed_sections", "complete at least one section first", nil)
	}

	return s.advisor.Suggestions(ctx, inputs)
}

// UploadAttachment stores one standalone binary for a section and returns its
// metadata, for clients that upload ahead of the section save.
func (s *Service) UploadAttachment(ctx context.Context, sess Session, draftID, sectionID string, blob answers.Blob) (answers.Attachment, error) {
	if !s.registry.Has(sectionID) {
		return answers.Attachment{}, domainError(http.StatusNotFound, "unknown_section", "unknown section: "+sectionID, nil)
	}
	if _, err := s.store.GetDraft(ctx, sess.UserID, draftID); err != nil {
		return answers.Attachment{}, err
	}
	return s.uploader.Upload(ctx, sess.UserID, draftID, sectionID, blob)
}

func (s *Service) Search(ctx context.Context, ownerID, text string, filterType search.ResultType, limit, offset int) search.Response {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.search.Search(search.Query{
		Text:       text,
		OwnerID:    ownerID,
		FilterType: filterType,
		Limit:      limit,
		Offset:     offset,
	})
}

// treeToMap round-trips an answer tree through its JSON form, producing the
// plain map shape the suggestion prompt embeds.
func treeToMap(tree answers.Tree) (map[string]any, error) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// flattenAnswers collects the searchable text of a tree: scalar values,
// record fields and attachment names, space separated.
func flattenAnswers(tree answers.Tree) string {
	var parts []string
	var walk func(v answers.Value)
	walk = func(v answers.Value) {
		switch v.Kind {
		case answers.KindScalar:
			if s, ok := v.Scalar.(string); ok && s != "" {
				parts = append(parts, s)
			}
		case answers.KindScalarList, answers.KindRecordList, answers.KindAttachmentList:
			for _, item := range v.List {
				walk(item)
			}
		case answers.KindRecord:
			for _, key := range v.SortedKeys() {
				walk(v.Record[key])
			}
		case answers.KindAttachment:
			if v.Attachment.Name != "" {
				parts = append(parts, v.Attachment.Name)
			}
		}
	}
	for _, key := range sortedKeys(tree) {
		walk(tree[key])
	}
	return strings.Join(parts, " ")
}

func sortedKeys(tree answers.Tree) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
