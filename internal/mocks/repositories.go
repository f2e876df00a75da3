package mocks

import (
	"context"
	"time"

	"github.com/zakhij/subreddit-scraper/internal/models"
)

// MockSubredditRepository is a mock implementation of SubredditRepository
type MockSubredditRepository struct {
	Subreddits     map[string]*models.Subreddit
	NameIndex      map[string]*models.Subreddit
	UpsertError    error
	UpsertCalls    int
	IngestionStamp map[string]time.Time
}

func NewMockSubredditRepository() *MockSubredditRepository {
	return &MockSubredditRepository{
		Subreddits:     make(map[string]*models.Subreddit),
		NameIndex:      make(map[string]*models.Subreddit),
		IngestionStamp: make(map[string]time.Time),
	}
}

func (m *MockSubredditRepository) Upsert(ctx context.Context, subreddit *models.Subreddit) error {
	m.UpsertCalls++
	if m.UpsertError != nil {
		return m.UpsertError
	}
	if existing, ok := m.Subreddits[subreddit.ID]; ok {
		existing.Name = subreddit.Name
		m.NameIndex[subreddit.Name] = existing
		return nil
	}
	m.Subreddits[subreddit.ID] = subreddit
	m.NameIndex[subreddit.Name] = subreddit
	return nil
}

func (m *MockSubredditRepository) GetByID(ctx context.Context, id string) (*models.Subreddit, error) {
	return m.Subreddits[id], nil
}

func (m *MockSubredditRepository) GetByName(ctx context.Context, name string) (*models.Subreddit, error) {
	return m.NameIndex[name], nil
}

func (m *MockSubredditRepository) RecordIngestion(ctx context.Context, id string, ingestedAt, lookback time.Time) error {
	sub, ok := m.Subreddits[id]
	if !ok {
		return nil
	}
	t := ingestedAt
	sub.LastIngestedAt = &t
	if sub.LookbackEarliest == nil || lookback.Before(*sub.LookbackEarliest) {
		lb := lookback
		sub.LookbackEarliest = &lb
	}
	m.IngestionStamp[id] = ingestedAt
	return nil
}

// MockThreadRepository is a mock implementation of ThreadRepository
type MockThreadRepository struct {
	Threads     map[string]*models.Thread
	InsertFunc  func(ctx context.Context, thread *models.Thread) error
	UpdateFunc  func(ctx context.Context, thread *models.Thread) error
	InsertCalls int
	UpdateCalls int
}

func NewMockThreadRepository() *MockThreadRepository {
	return &MockThreadRepository{
		Threads: make(map[string]*models.Thread),
	}
}

func (m *MockThreadRepository) Insert(ctx context.Context, thread *models.Thread) error {
	m.InsertCalls++
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, thread); err != nil {
			return err
		}
	}
	copied := *thread
	m.Threads[thread.ID] = &copied
	return nil
}

func (m *MockThreadRepository) Update(ctx context.Context, thread *models.Thread) error {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(ctx, thread); err != nil {
			return err
		}
	}
	stored, ok := m.Threads[thread.ID]
	if !ok {
		return nil
	}
	// Mirror the SQL update: mutable subset only.
	stored.Title = thread.Title
	stored.SelfText = thread.SelfText
	stored.URL = thread.URL
	stored.Score = thread.Score
	stored.NumComments = thread.NumComments
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MockThreadRepository) GetByID(ctx context.Context, id string) (*models.Thread, error) {
	return m.Threads[id], nil
}

func (m *MockThreadRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Threads[id]
	return exists, nil
}

func (m *MockThreadRepository) ListBySubredditSince(ctx context.Context, subredditID string, since time.Time) ([]*models.Thread, error) {
	var threads []*models.Thread
	for _, t := range m.Threads {
		if t.SubredditID == subredditID && !t.CreatedAt.Before(since) {
			threads = append(threads, t)
		}
	}
	return threads, nil
}

func (m *MockThreadRepository) Count(ctx context.Context) (int, error) {
	return len(m.Threads), nil
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	Comments    map[string]*models.Comment
	InsertFunc  func(ctx context.Context, comment *models.Comment) error
	UpdateFunc  func(ctx context.Context, comment *models.Comment) error
	InsertCalls int
	UpdateCalls int
}

func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{
		Comments: make(map[string]*models.Comment),
	}
}

func (m *MockCommentRepository) Insert(ctx context.Context, comment *models.Comment) error {
	m.InsertCalls++
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, comment); err != nil {
			return err
		}
	}
	copied := *comment
	m.Comments[comment.ID] = &copied
	return nil
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(ctx, comment); err != nil {
			return err
		}
	}
	stored, ok := m.Comments[comment.ID]
	if !ok {
		return nil
	}
	// Mirror the SQL update: score, body and author only. The parent
	// reference set at insertion is immutable.
	stored.Score = comment.Score
	stored.Body = comment.Body
	stored.Author = comment.Author
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	return m.Comments[id], nil
}

func (m *MockCommentRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, exists := m.Comments[id]
	return exists, nil
}

func (m *MockCommentRepository) ListByThread(ctx context.Context, threadID string) ([]*models.Comment, error) {
	var comments []*models.Comment
	for _, c := range m.Comments {
		if c.ThreadID == threadID {
			comments = append(comments, c)
		}
	}
	sortCommentsByCreatedAt(comments)
	return comments, nil
}

func (m *MockCommentRepository) Count(ctx context.Context) (int, error) {
	return len(m.Comments), nil
}

func sortCommentsByCreatedAt(comments []*models.Comment) {
	for i := 1; i < len(comments); i++ {
		for j := i; j > 0 && comments[j].CreatedAt.Before(comments[j-1].CreatedAt); j-- {
			comments[j], comments[j-1] = comments[j-1], comments[j]
		}
	}
}

// MockRunRepository is a mock implementation of RunRepository
type MockRunRepository struct {
	Runs        map[string]*models.IngestionRun
	CreateError error
	UpdateError error
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{
		Runs: make(map[string]*models.IngestionRun),
	}
}

func (m *MockRunRepository) Create(ctx context.Context, run *models.IngestionRun) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	copied := *run
	m.Runs[run.ID] = &copied
	return nil
}

func (m *MockRunRepository) Update(ctx context.Context, run *models.IngestionRun) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	copied := *run
	m.Runs[run.ID] = &copied
	return nil
}

func (m *MockRunRepository) GetByID(ctx context.Context, id string) (*models.IngestionRun, error) {
	return m.Runs[id], nil
}
