package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/zakhij/subreddit-scraper/internal/database"
	"github.com/zakhij/subreddit-scraper/internal/models"
)

// subredditRepo is the concrete implementation of SubredditRepository
type subredditRepo struct {
	db *database.DB
}

// NewSubredditRepo creates a new subreddit repository
func NewSubredditRepo(db *database.DB) SubredditRepository {
	return &subredditRepo{db: db}
}

// Upsert inserts a subreddit or refreshes its name if the row already exists
func (r *subredditRepo) Upsert(ctx context.Context, subreddit *models.Subreddit) error {
	query := `
		INSERT INTO subreddits (id, name, first_seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
	`
	_, err := r.db.ExecContext(ctx, query,
		subreddit.ID, subreddit.Name, subreddit.FirstSeenAt,
	)
	return err
}

// GetByID retrieves a subreddit by external id
func (r *subredditRepo) GetByID(ctx context.Context, id string) (*models.Subreddit, error) {
	query := `
		SELECT id, name, first_seen_at, last_ingested_at, lookback_earliest
		FROM subreddits WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByName retrieves a subreddit by its unique name
func (r *subredditRepo) GetByName(ctx context.Context, name string) (*models.Subreddit, error) {
	query := `
		SELECT id, name, first_seen_at, last_ingested_at, lookback_earliest
		FROM subreddits WHERE name = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// RecordIngestion stamps the last completed ingestion and widens the
// earliest-lookback watermark if this run reached further back.
func (r *subredditRepo) RecordIngestion(ctx context.Context, id string, ingestedAt, lookback time.Time) error {
	query := `
		UPDATE subreddits SET
			last_ingested_at = $2,
			lookback_earliest = LEAST(COALESCE(lookback_earliest, $3), $3)
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, ingestedAt, lookback)
	return err
}

func (r *subredditRepo) scanOne(row *sql.Row) (*models.Subreddit, error) {
	var subreddit models.Subreddit
	err := row.Scan(
		&subreddit.ID, &subreddit.Name, &subreddit.FirstSeenAt,
		&subreddit.LastIngestedAt, &subreddit.LookbackEarliest,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subreddit, nil
}
