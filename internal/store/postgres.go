package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
)

// ErrNotFound is returned when an addressed draft or section does not exist.
var ErrNotFound = errors.New("store: not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- users ----

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name, email, password_hash, is_email_verified, verification_token)
		VALUES ($1, $2, LOWER($3), $4, $5, $6)
	`, user.ID, user.DisplayName, user.Email, user.PasswordHash, user.IsEmailVerified, user.VerificationToken)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, is_email_verified
		FROM users WHERE email = LOWER($1)
	`, email).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.IsEmailVerified)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID string) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, password_hash, is_email_verified
		FROM users WHERE id=$1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.IsEmailVerified)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) UpdateUserVerificationToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET verification_token=$2, verification_expires_at=$3, updated_at=NOW() WHERE id=$1
	`, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("update verification token: %w", err)
	}
	return nil
}

func (s *PostgresStore) VerifyUserEmail(ctx context.Context, token string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_email_verified=TRUE, verification_token='', verification_expires_at=NULL, updated_at=NOW()
		WHERE verification_token=$1 AND verification_expires_at > NOW()
	`, token)
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("verify email result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreatePasswordReset(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("create password reset: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPasswordReset(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM password_resets
		WHERE token=$1 AND used_at IS NULL AND expires_at > NOW()
	`, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup password reset: %w", err)
	}
	return userID, nil
}

func (s *PostgresStore) MarkPasswordResetUsed(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE password_resets SET used_at=NOW() WHERE token=$1`, token)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	return nil
}

// ---- refresh sessions (Postgres fallback when Redis is not configured) ----

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	const query = `
		SELECT u.id, u.display_name, u.email, u.is_email_verified
		FROM refresh_sessions rs
		JOIN users u ON u.id = rs.user_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	var user User
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(&user.ID, &user.DisplayName, &user.Email, &user.IsEmailVerified)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup refresh session: %w", err)
	}
	return user, nil
}

// ---- drafts ----

func (s *PostgresStore) CreateDraft(ctx context.Context, draft Draft) error {
	sections, err := json.Marshal(draft.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections map: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drafts (id, owner_id, title, status, sections)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, draft.ID, draft.OwnerID, draft.Title, draft.Status, sections)
	if err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDrafts(ctx context.Context, ownerID string) ([]Draft, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, status, sections, last_output, created_at, updated_at
		FROM drafts
		WHERE owner_id=$1
		ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	items := make([]Draft, 0)
	for rows.Next() {
		item, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetDraft(ctx context.Context, ownerID, draftID string) (Draft, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, status, sections, last_output, created_at, updated_at
		FROM drafts
		WHERE owner_id=$1 AND id=$2
	`, ownerID, draftID)
	draft, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, err
	}
	return draft, nil
}

func (s *PostgresStore) UpdateDraftStatus(ctx context.Context, ownerID, draftID, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts SET status=$3, updated_at=NOW() WHERE owner_id=$1 AND id=$2
	`, ownerID, draftID, status)
	if err != nil {
		return fmt.Errorf("update draft status: %w", err)
	}
	return requireRow(res)
}

// MergeDraftSection flips one completion flag in the draft aggregate. The
// jsonb concatenation keeps all other flags intact, matching document-merge
// semantics.
func (s *PostgresStore) MergeDraftSection(ctx context.Context, ownerID, draftID, sectionID string, completed bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts
		SET sections = sections || jsonb_build_object($3::text, $4::boolean), updated_at=NOW()
		WHERE owner_id=$1 AND id=$2
	`, ownerID, draftID, sectionID, completed)
	if err != nil {
		return fmt.Errorf("merge draft section: %w", err)
	}
	return requireRow(res)
}

// SetDraftSections replaces the whole completion map (repair path).
func (s *PostgresStore) SetDraftSections(ctx context.Context, ownerID, draftID string, sections map[string]bool) error {
	payload, err := json.Marshal(sections)
	if err != nil {
		return fmt.Errorf("marshal sections map: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts SET sections=$3, updated_at=NOW() WHERE owner_id=$1 AND id=$2
	`, ownerID, draftID, payload)
	if err != nil {
		return fmt.Errorf("set draft sections: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetDraftOutput(ctx context.Context, ownerID, draftID string, output OutputRef) error {
	payload, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("marshal output ref: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts SET last_output=$3, status=$4, updated_at=NOW() WHERE owner_id=$1 AND id=$2
	`, ownerID, draftID, payload, StatusGenerated)
	if err != nil {
		return fmt.Errorf("set draft output: %w", err)
	}
	return requireRow(res)
}

// ---- section records ----

// UpsertSectionRecord merge-writes one section. Existing answer fields not
// present in the new tree survive (jsonb concatenation); the progress and
// completion columns always move together with the answers in one statement.
func (s *PostgresStore) UpsertSectionRecord(ctx context.Context, record SectionRecord) error {
	payload, err := json.Marshal(record.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO section_records (owner_id, draft_id, section_id, answers, progress, completed, last_saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (owner_id, draft_id, section_id) DO UPDATE SET
			answers = section_records.answers || EXCLUDED.answers,
			progress = EXCLUDED.progress,
			completed = EXCLUDED.completed,
			last_saved_at = NOW()
	`, record.OwnerID, record.DraftID, record.SectionID, payload, record.Progress, record.Completed)
	if err != nil {
		return fmt.Errorf("upsert section record: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSectionRecord(ctx context.Context, ownerID, draftID, sectionID string) (SectionRecord, error) {
	var record SectionRecord
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT owner_id, draft_id, section_id, answers, progress, completed, last_saved_at
		FROM section_records
		WHERE owner_id=$1 AND draft_id=$2 AND section_id=$3
	`, ownerID, draftID, sectionID).Scan(
		&record.OwnerID, &record.DraftID, &record.SectionID, &payload,
		&record.Progress, &record.Completed, &record.LastSavedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SectionRecord{}, ErrNotFound
	}
	if err != nil {
		return SectionRecord{}, fmt.Errorf("get section record: %w", err)
	}
	record.Answers, err = answers.DecodeTree(payload)
	if err != nil {
		return SectionRecord{}, err
	}
	return record, nil
}

func (s *PostgresStore) ListSectionRecords(ctx context.Context, ownerID, draftID string) ([]SectionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT owner_id, draft_id, section_id, answers, progress, completed, last_saved_at
		FROM section_records
		WHERE owner_id=$1 AND draft_id=$2
	`, ownerID, draftID)
	if err != nil {
		return nil, fmt.Errorf("list section records: %w", err)
	}
	defer rows.Close()

	items := make([]SectionRecord, 0)
	for rows.Next() {
		var record SectionRecord
		var payload []byte
		if err := rows.Scan(
			&record.OwnerID, &record.DraftID, &record.SectionID, &payload,
			&record.Progress, &record.Completed, &record.LastSavedAt,
		); err != nil {
			return nil, fmt.Errorf("scan section record: %w", err)
		}
		record.Answers, err = answers.DecodeTree(payload)
		if err != nil {
			return nil, err
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate section records: %w", err)
	}
	return items, nil
}

// ---- helpers ----

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (Draft, error) {
	var draft Draft
	var sections []byte
	var output []byte
	if err := row.Scan(
		&draft.ID, &draft.OwnerID, &draft.Title, &draft.Status,
		&sections, &output, &draft.CreatedAt, &draft.UpdatedAt,
	); err != nil {
		return Draft{}, err
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &draft.Sections); err != nil {
			return Draft{}, fmt.Errorf("decode sections map: %w", err)
		}
	}
	if draft.Sections == nil {
		draft.Sections = map[string]bool{}
	}
	if len(output) > 0 {
		var ref OutputRef
		if err := json.Unmarshal(output, &ref); err != nil {
			return Draft{}, fmt.Errorf("decode output ref: %w", err)
		}
		draft.LastOutput = &ref
	}
	return draft, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
