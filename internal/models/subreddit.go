package models

import (
	"time"
)

// Subreddit represents an ingested subreddit. The ID is the external
// identifier assigned by Reddit and doubles as the reconciliation key.
type Subreddit struct {
	ID               string     `json:"id" db:"id"`
	Name             string     `json:"name" db:"name"`
	FirstSeenAt      time.Time  `json:"first_seen_at" db:"first_seen_at"`
	LastIngestedAt   *time.Time `json:"last_ingested_at,omitempty" db:"last_ingested_at"`
	LookbackEarliest *time.Time `json:"lookback_earliest,omitempty" db:"lookback_earliest"`
}
