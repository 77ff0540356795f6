package model

import "time"

// IngestionState represents the current state of an ingestion request.
type IngestionState string

const (
	IngestionRunning IngestionState = "running"
	IngestionSuccess IngestionState = "success"
	IngestionFailed  IngestionState = "failed"
)

// Terminal reports whether the state is final.
func (s IngestionState) Terminal() bool {
	return s == IngestionSuccess || s == IngestionFailed
}

// Progress locates an ingestion within its stage sequence.
type Progress struct {
	Stage      string `json:"stage"`
	Step       int    `json:"step"`
	TotalSteps int    `json:"total_steps"`
}

// IngestionStatus is the in-memory status record for one ingestion request.
// It is created at request start, mutated at each stage transition, and
// evicted by an age-based sweep once terminal.
type IngestionStatus struct {
	ID          string         `json:"id"`
	State       IngestionState `json:"state"`
	URL         string         `json:"url"`
	Progress    Progress       `json:"progress"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
}
