package store

import (
	"time"

	"github.com/MahiShah30/hospital-sop-generator/internal/answers"
)

type User struct {
	ID                    string
	DisplayName           string
	Email                 string
	PasswordHash          string
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Draft statuses. Archival is a status value, never a row delete.
const (
	StatusDraft      = "draft"
	StatusInProgress = "in_progress"
	StatusReady      = "ready"
	StatusGenerating = "generating"
	StatusGenerated  = "generated"
	StatusArchived   = "archived"
)

// OutputRef points at the most recently compiled artifact for a draft.
type OutputRef struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	Format string `json:"format"`
}

// Draft is the top-level SOP aggregate. Sections mirrors per-section
// completion; absence of a key means "not started".
type Draft struct {
	ID         string
	OwnerID    string
	Title      string
	Status     string
	Sections   map[string]bool
	LastOutput *OutputRef
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SectionRecord holds one section's persisted answers for one draft.
type SectionRecord struct {
	OwnerID     string
	DraftID     string
	SectionID   string
	Answers     answers.Tree
	Progress    float64
	Completed   bool
	LastSavedAt time.Time
}
