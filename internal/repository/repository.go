package repository

import (
	"context"
	"time"

	"github.com/zakhij/subreddit-scraper/internal/database"
	"github.com/zakhij/subreddit-scraper/internal/models"
)

// SubredditRepository defines the interface for subreddit data operations
type SubredditRepository interface {
	Upsert(ctx context.Context, subreddit *models.Subreddit) error
	GetByID(ctx context.Context, id string) (*models.Subreddit, error)
	GetByName(ctx context.Context, name string) (*models.Subreddit, error)
	RecordIngestion(ctx context.Context, id string, ingestedAt, lookback time.Time) error
}

// ThreadRepository defines the interface for thread data operations
type ThreadRepository interface {
	Insert(ctx context.Context, thread *models.Thread) error
	Update(ctx context.Context, thread *models.Thread) error
	GetByID(ctx context.Context, id string) (*models.Thread, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListBySubredditSince(ctx context.Context, subredditID string, since time.Time) ([]*models.Thread, error)
	Count(ctx context.Context) (int, error)
}

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Insert(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListByThread(ctx context.Context, threadID string) ([]*models.Comment, error)
	Count(ctx context.Context) (int, error)
}

// RunRepository defines the interface for ingestion run bookkeeping
type RunRepository interface {
	Create(ctx context.Context, run *models.IngestionRun) error
	Update(ctx context.Context, run *models.IngestionRun) error
	GetByID(ctx context.Context, id string) (*models.IngestionRun, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Subreddit SubredditRepository
	Thread    ThreadRepository
	Comment   CommentRepository
	Run       RunRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Subreddit: NewSubredditRepo(db),
		Thread:    NewThreadRepo(db),
		Comment:   NewCommentRepo(db),
		Run:       NewRunRepo(db),
	}
}
