package models

import (
	"time"
)

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// IngestionRun records a single ingestion run and its aggregate statistics.
type IngestionRun struct {
	ID                string     `json:"id" db:"id"`
	SubredditName     string     `json:"subreddit_name" db:"subreddit_name"`
	LookbackDate      time.Time  `json:"lookback_date" db:"lookback_date"`
	Status            string     `json:"status" db:"status"`
	ThreadsInserted   int        `json:"threads_inserted" db:"threads_inserted"`
	ThreadsUpdated    int        `json:"threads_updated" db:"threads_updated"`
	ThreadsUnchanged  int        `json:"threads_unchanged" db:"threads_unchanged"`
	CommentsInserted  int        `json:"comments_inserted" db:"comments_inserted"`
	CommentsUpdated   int        `json:"comments_updated" db:"comments_updated"`
	CommentsUnchanged int        `json:"comments_unchanged" db:"comments_unchanged"`
	ItemsSkipped      int        `json:"items_skipped" db:"items_skipped"`
	ErrorCount        int        `json:"error_count" db:"error_count"`
	StartedAt         time.Time  `json:"started_at" db:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
