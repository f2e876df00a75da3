package repository

import (
	"context"
	"database/sql"

	"github.com/zakhij/subreddit-scraper/internal/database"
	"github.com/zakhij/subreddit-scraper/internal/models"
)

// runRepo is the concrete implementation of RunRepository
type runRepo struct {
	db *database.DB
}

// NewRunRepo creates a new ingestion run repository
func NewRunRepo(db *database.DB) RunRepository {
	return &runRepo{db: db}
}

// Create inserts a new ingestion run row
func (r *runRepo) Create(ctx context.Context, run *models.IngestionRun) error {
	query := `
		INSERT INTO ingestion_runs (id, subreddit_name, lookback_date, status, started_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.SubredditName, run.LookbackDate, run.Status, run.StartedAt,
	)
	return err
}

// Update finalizes an ingestion run with its statistics
func (r *runRepo) Update(ctx context.Context, run *models.IngestionRun) error {
	query := `
		UPDATE ingestion_runs SET
			status = $2,
			threads_inserted = $3,
			threads_updated = $4,
			threads_unchanged = $5,
			comments_inserted = $6,
			comments_updated = $7,
			comments_unchanged = $8,
			items_skipped = $9,
			error_count = $10,
			completed_at = $11
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Status,
		run.ThreadsInserted, run.ThreadsUpdated, run.ThreadsUnchanged,
		run.CommentsInserted, run.CommentsUpdated, run.CommentsUnchanged,
		run.ItemsSkipped, run.ErrorCount, run.CompletedAt,
	)
	return err
}

// GetByID retrieves an ingestion run by id
func (r *runRepo) GetByID(ctx context.Context, id string) (*models.IngestionRun, error) {
	query := `
		SELECT id, subreddit_name, lookback_date, status,
			threads_inserted, threads_updated, threads_unchanged,
			comments_inserted, comments_updated, comments_unchanged,
			items_skipped, error_count, started_at, completed_at
		FROM ingestion_runs WHERE id = $1
	`
	var run models.IngestionRun
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.SubredditName, &run.LookbackDate, &run.Status,
		&run.ThreadsInserted, &run.ThreadsUpdated, &run.ThreadsUnchanged,
		&run.CommentsInserted, &run.CommentsUpdated, &run.CommentsUnchanged,
		&run.ItemsSkipped, &run.ErrorCount, &run.StartedAt, &run.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}
