package mocks

import (
	"context"

	"github.com/zakhij/subreddit-scraper/internal/reddit"
)

// MockSource is a mock remote source yielding canned subreddit, thread and
// comment records.
type MockSource struct {
	Subreddit        *reddit.SubredditRecord
	Threads          []*reddit.ThreadRecord
	CommentsByThread map[string][]*reddit.CommentRecord

	SubredditError error
	StreamError    error
	CommentsError  error

	// ThreadsYielded counts how many threads were handed to the stream
	// callback, so tests can assert short-circuiting.
	ThreadsYielded int
	CommentFetches int
}

func NewMockSource() *MockSource {
	return &MockSource{
		CommentsByThread: make(map[string][]*reddit.CommentRecord),
	}
}

func (m *MockSource) FetchSubreddit(ctx context.Context, name string) (*reddit.SubredditRecord, error) {
	if m.SubredditError != nil {
		return nil, m.SubredditError
	}
	if m.Subreddit != nil {
		return m.Subreddit, nil
	}
	return &reddit.SubredditRecord{ID: "sub_" + name, Name: name}, nil
}

func (m *MockSource) StreamNewThreads(ctx context.Context, name string, fn func(*reddit.ThreadRecord) (bool, error)) error {
	if m.StreamError != nil {
		return m.StreamError
	}
	for _, t := range m.Threads {
		m.ThreadsYielded++
		cont, err := fn(t)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

func (m *MockSource) FetchComments(ctx context.Context, name, threadID string) ([]*reddit.CommentRecord, error) {
	m.CommentFetches++
	if m.CommentsError != nil {
		return nil, m.CommentsError
	}
	return m.CommentsByThread[threadID], nil
}
