package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
	"github.com/MahiShah30/hospital-sop-generator/internal/auth"
	"github.com/MahiShah30/hospital-sop-generator/internal/export"
	"github.com/MahiShah30/hospital-sop-generator/internal/schema"
	"github.com/MahiShah30/hospital-sop-generator/internal/search"
	"github.com/MahiShah30/hospital-sop-generator/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

const maxUploadBytes = 32 << 20

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	// Auth routes (no session required)
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signup" {
		s.handleAuthSignUp(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signin" {
		s.handleAuthSignIn(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/verify-email" {
		s.handleAuthVerifyEmail(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/reset-password/request" {
		s.handleAuthRequestReset(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/reset-password" {
		s.handleAuthResetPassword(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		session, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"userId":        session.UserID,
			"userName":      session.UserName,
			"email":         session.Email,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/refresh" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Refresh(r.Context(), body.RefreshToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
			return
		}
		writeJSON(w, http.StatusOK, sessionPayload(session))
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/session/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	// Everything below requires an authenticated session.
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/drafts" {
		items, err := s.service.ListDrafts(r.Context(), session.UserID)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"drafts": items})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/drafts" {
		var body struct {
			Title string `json:"title"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CreateDraft(r.Context(), session, body.Title)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/upload" {
		s.handleUpload(w, r, session)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/ai-suggestions" {
		var body struct {
			DraftID string `json:"draftId"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		suggestions, err := s.service.Suggestions(r.Context(), session.UserID, body.DraftID)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		offset, _ := strconv.Atoi(query.Get("offset"))
		response := s.service.Search(r.Context(), session.UserID, query.Get("q"), search.ResultType(query.Get("type")), limit, offset)
		writeJSON(w, http.StatusOK, response)
		return
	}

	parts := splitPath(r.URL.Path)

	// /api/drafts/{draftId}
	if len(parts) == 3 && parts[0] == "api" && parts[1] == "drafts" && r.Method == http.MethodGet {
		payload, err := s.service.GetDraft(r.Context(), session.UserID, parts[2])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	// /api/drafts/{draftId} status update (archive and restore)
	if len(parts) == 3 && parts[0] == "api" && parts[1] == "drafts" && r.Method == http.MethodPatch {
		var body struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.SetDraftStatus(r.Context(), session.UserID, parts[2], body.Status)
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	// /api/drafts/{draftId}/compile
	if len(parts) == 4 && parts[0] == "api" && parts[1] == "drafts" && parts[3] == "compile" && r.Method == http.MethodPost {
		var body struct {
			Format string `json:"format"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		payload, err := s.service.CompileDraft(r.Context(), session, parts[2], export.Format(body.Format))
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	// /api/drafts/{draftId}/repair
	if len(parts) == 4 && parts[0] == "api" && parts[1] == "drafts" && parts[3] == "repair" && r.Method == http.MethodPost {
		payload, err := s.service.RepairDraft(r.Context(), session.UserID, parts[2])
		if err != nil {
			writeMappedError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	// /api/drafts/{draftId}/sections/{sectionId}
	if len(parts) == 5 && parts[0] == "api" && parts[1] == "drafts" && parts[3] == "sections" {
		draftID, sectionID := parts[2], parts[4]

		if r.Method == http.MethodGet {
			payload, err := s.service.GetSection(r.Context(), session.UserID, draftID, sectionID)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}

		if r.Method == http.MethodPut {
			var body struct {
				Answers  answers.Tree `json:"answers"`
				Progress *float64     `json:"progress"`
			}
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			// A save without an explicit progress is a mid-edit autosave.
			progress := 0.5
			if body.Progress != nil {
				progress = *body.Progress
			}
			if body.Answers == nil {
				body.Answers = answers.Tree{}
			}
			payload, err := s.service.SaveSection(r.Context(), session, draftID, sectionID, body.Answers, progress)
			if err != nil {
				writeMappedError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, payload)
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request, session Session) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid multipart body", nil)
		return
	}
	draftID := r.FormValue("draftId")
	sectionID := r.FormValue("sectionId")
	if draftID == "" || sectionID == "" {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "draftId and sectionId are required", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "file is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "could not read file", nil)
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload limit", nil)
		return
	}

	attachment, err := s.service.UploadAttachment(r.Context(), session, draftID, sectionID, answers.Blob{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attachment)
}

func sessionPayload(session Session) map[string]any {
	return map[string]any{
		"accessToken":  session.Token,
		"refreshToken": session.RefreshToken,
		"userId":       session.UserID,
		"userName":     session.UserName,
		"email":        session.Email,
		"expiresAt":    session.ExpiresAt.Unix(),
	}
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return Session{}, false
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Session lookup failed", nil)
		return Session{}, false
	}
	return session, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func writeMappedError(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, schema.ErrUnknownSection) {
		return http.StatusNotFound, "UNKNOWN_SECTION", "Unknown section", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

// Auth handlers for email/password authentication

func (s *HTTPServer) handleAuthSignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	payload, err := s.service.SignUp(r.Context(), body.Email, body.Password, body.DisplayName)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	payload["message"] = "Account created. Verify your email to continue."
	writeJSON(w, http.StatusCreated, payload)
}

func (s *HTTPServer) handleAuthSignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	session, requiresVerify, err := s.service.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
		return
	}
	if requiresVerify {
		writeError(w, http.StatusForbidden, "EMAIL_NOT_VERIFIED", "Please verify your email before signing in", nil)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(session))
}

func (s *HTTPServer) handleAuthVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	if err := s.service.VerifyEmail(r.Context(), body.Token); err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Email verified successfully",
	})
}

func (s *HTTPServer) handleAuthRequestReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	payload, err := s.service.RequestPasswordReset(r.Context(), body.Email)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	payload["message"] = "If an account exists, a reset email has been sent"
	writeJSON(w, http.StatusOK, payload)
}

func (s *HTTPServer) handleAuthResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	if err := s.service.ResetPassword(r.Context(), body.Token, body.NewPassword); err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password reset successfully",
	})
}
