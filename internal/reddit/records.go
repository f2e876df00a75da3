package reddit

import (
	"time"
)

// SubredditRecord is the raw subreddit identity fetched from the API.
type SubredditRecord struct {
	ID   string
	Name string
}

// ThreadRecord is a raw post from a subreddit listing. ID is the bare
// external id (no t3_ prefix). Permalink is site-relative.
type ThreadRecord struct {
	ID          string
	Title       string
	SelfText    string
	URL         string
	Permalink   string
	Author      string
	Score       int
	NumComments int
	CreatedAt   time.Time
	IsSelf      bool
}

// CommentRecord is a raw comment node. ParentID is the bare external id of
// the parent comment, or empty for a top-level comment. Replies preserve
// the fetched tree so parents are always visited before their children.
type CommentRecord struct {
	ID        string
	ParentID  string
	Author    string
	Body      string
	Score     int
	CreatedAt time.Time
	Replies   []*CommentRecord
}
