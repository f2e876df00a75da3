package models

import (
	"time"
)

// Thread represents a subreddit post. ID is the external Reddit id, stable
// across runs. Title, selftext, url, score and num_comments can change
// upstream between runs; created_at and author never do.
type Thread struct {
	ID          string    `json:"id" db:"id"`
	SubredditID string    `json:"subreddit_id" db:"subreddit_id"`
	Title       string    `json:"title" db:"title"`
	SelfText    string    `json:"selftext" db:"selftext"`
	ExternalURL *string   `json:"external_url,omitempty" db:"external_url"`
	URL         string    `json:"url" db:"url"`
	Author      *string   `json:"author,omitempty" db:"author"`
	Score       int       `json:"score" db:"score"`
	NumComments int       `json:"num_comments" db:"num_comments"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
