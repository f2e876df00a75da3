package models

import (
	"time"
)

// Comment represents a comment on a thread. ParentCommentID is nil for
// top-level comments and is set once at insertion; a comment's position in
// the tree never changes upstream. Score, body and author are mutable
// (deleted comments arrive with redacted author/body and are stored as-is).
type Comment struct {
	ID              string    `json:"id" db:"id"`
	ThreadID        string    `json:"thread_id" db:"thread_id"`
	ParentCommentID *string   `json:"parent_comment_id,omitempty" db:"parent_comment_id"`
	Author          *string   `json:"author,omitempty" db:"author"`
	Body            string    `json:"body" db:"body"`
	Score           int       `json:"score" db:"score"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
