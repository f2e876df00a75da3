package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/zakhij/subreddit-scraper/internal/database"
	"github.com/zakhij/subreddit-scraper/internal/models"
)

// threadRepo is the concrete implementation of ThreadRepository
type threadRepo struct {
	db *database.DB
}

// NewThreadRepo creates a new thread repository
func NewThreadRepo(db *database.DB) ThreadRepository {
	return &threadRepo{db: db}
}

// Insert inserts a new thread
func (r *threadRepo) Insert(ctx context.Context, thread *models.Thread) error {
	query := `
		INSERT INTO threads (id, subreddit_id, title, selftext, external_url, url, author, score, num_comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		thread.ID, thread.SubredditID, thread.Title, thread.SelfText,
		thread.ExternalURL, thread.URL, thread.Author, thread.Score,
		thread.NumComments, thread.CreatedAt, time.Now(),
	)
	return err
}

// Update rewrites the mutable attribute subset of an existing thread.
// Creation timestamp, author and subreddit ownership are never touched.
func (r *threadRepo) Update(ctx context.Context, thread *models.Thread) error {
	query := `
		UPDATE threads SET
			title = $2,
			selftext = $3,
			url = $4,
			score = $5,
			num_comments = $6,
			updated_at = $7
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		thread.ID, thread.Title, thread.SelfText, thread.URL,
		thread.Score, thread.NumComments, time.Now(),
	)
	return err
}

// GetByID retrieves a thread by external id
func (r *threadRepo) GetByID(ctx context.Context, id string) (*models.Thread, error) {
	query := `
		SELECT id, subreddit_id, title, selftext, external_url, url, author, score, num_comments, created_at, updated_at
		FROM threads WHERE id = $1
	`
	var thread models.Thread
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&thread.ID, &thread.SubredditID, &thread.Title, &thread.SelfText,
		&thread.ExternalURL, &thread.URL, &thread.Author, &thread.Score,
		&thread.NumComments, &thread.CreatedAt, &thread.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

// Exists checks if a thread with the given id exists
func (r *threadRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM threads WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// ListBySubredditSince returns threads of a subreddit created on or after
// the given time, newest first.
func (r *threadRepo) ListBySubredditSince(ctx context.Context, subredditID string, since time.Time) ([]*models.Thread, error) {
	query := `
		SELECT id, subreddit_id, title, selftext, external_url, url, author, score, num_comments, created_at, updated_at
		FROM threads
		WHERE subreddit_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, subredditID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []*models.Thread
	for rows.Next() {
		var thread models.Thread
		err := rows.Scan(
			&thread.ID, &thread.SubredditID, &thread.Title, &thread.SelfText,
			&thread.ExternalURL, &thread.URL, &thread.Author, &thread.Score,
			&thread.NumComments, &thread.CreatedAt, &thread.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		threads = append(threads, &thread)
	}
	return threads, rows.Err()
}

// Count returns the total number of threads
func (r *threadRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM threads").Scan(&count)
	return count, err
}
