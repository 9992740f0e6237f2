package model

import "time"

type JobKind string

const (
	JobKindContentCreator    JobKind = "content_creator"
	JobKindContentResearcher JobKind = "content_researcher"
	JobKindContentEditor     JobKind = "content_editor"
	JobKindCourseDesigner    JobKind = "course_designer"
)

func (k JobKind) Valid() bool {
	switch k {
	case JobKindContentCreator, JobKindContentResearcher, JobKindContentEditor, JobKindCourseDesigner:
		return true
	}
	return false
}

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// jobEdges is the full transition relation. Status only moves forward;
// there is no edge out of a terminal state.
var jobEdges = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusRunning, JobStatusCancelled},
	JobStatusRunning: {JobStatusCompleted, JobStatusFailed, JobStatusCancelled},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to JobStatus) bool {
	for _, next := range jobEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TokenUsage mirrors the usage accounting a provider reports for one call.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// Job is one execution request against an agent configuration. It is created
// in pending state and owned by the orchestrator until it reaches a terminal
// status; after that only display metadata may change.
type Job struct {
	ID              string
	UserID          string
	ConfigurationID string
	Kind            JobKind
	Status          JobStatus

	InputPrompt   string
	InputMetadata map[string]any

	OutputData        map[string]any
	RelatedContentIDs []string
	Usage             TokenUsage
	ExecutionTimeMS   int64
	ErrorMessage      string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

func NewJob(id, userID, configID string, kind JobKind, prompt string, metadata map[string]any) *Job {
	now := time.Now()
	return &Job{
		ID:              id,
		UserID:          userID,
		ConfigurationID: configID,
		Kind:            kind,
		Status:          JobStatusPending,
		InputPrompt:     prompt,
		InputMetadata:   metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
