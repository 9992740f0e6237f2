package model

import "time"

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Suggestion is an AI-produced candidate content unit awaiting human review.
// It is created only by the job orchestrator; approve/reject may happen
// exactly once.
type Suggestion struct {
	ID     string
	JobID  string
	UserID string

	Title     string
	Slug      string
	Content   string
	BlockType string
	Language  string
	Tags      []string

	SourceURLs []string
	Confidence float64
	Rationale  string

	Status     SuggestionStatus
	ReviewedBy string
	Feedback   string

	ApprovedAt     *time.Time
	RejectedAt     *time.Time
	CreatedBlockID string

	CreatedAt time.Time
	UpdatedAt time.Time
}
