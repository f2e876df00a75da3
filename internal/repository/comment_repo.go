package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/zakhij/subreddit-scraper/internal/database"
	"github.com/zakhij/subreddit-scraper/internal/models"
)

// commentRepo is the concrete implementation of CommentRepository
type commentRepo struct {
	db *database.DB
}

// NewCommentRepo creates a new comment repository
func NewCommentRepo(db *database.DB) CommentRepository {
	return &commentRepo{db: db}
}

// Insert inserts a new comment. The parent reference is set here once and
// never updated afterwards.
func (r *commentRepo) Insert(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (id, thread_id, parent_comment_id, author, body, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.ThreadID, comment.ParentCommentID,
		comment.Author, comment.Body, comment.Score,
		comment.CreatedAt, time.Now(),
	)
	return err
}

// Update rewrites the mutable attribute subset: score, body and author.
// Tombstoned comments land here with redacted author/body.
func (r *commentRepo) Update(ctx context.Context, comment *models.Comment) error {
	query := `
		UPDATE comments SET
			score = $2,
			body = $3,
			author = $4,
			updated_at = $5
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.Score, comment.Body, comment.Author, time.Now(),
	)
	return err
}

// GetByID retrieves a comment by external id
func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	query := `
		SELECT id, thread_id, parent_comment_id, author, body, score, created_at, updated_at
		FROM comments WHERE id = $1
	`
	var comment models.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID, &comment.ThreadID, &comment.ParentCommentID,
		&comment.Author, &comment.Body, &comment.Score,
		&comment.CreatedAt, &comment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Exists checks if a comment with the given id exists
func (r *commentRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)", id).Scan(&exists)
	return exists, err
}

// ListByThread returns all comments of a thread in chronological order.
// Chronological order guarantees parents precede children, which display
// tree reconstruction relies on.
func (r *commentRepo) ListByThread(ctx context.Context, threadID string) ([]*models.Comment, error) {
	query := `
		SELECT id, thread_id, parent_comment_id, author, body, score, created_at, updated_at
		FROM comments
		WHERE thread_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var comment models.Comment
		err := rows.Scan(
			&comment.ID, &comment.ThreadID, &comment.ParentCommentID,
			&comment.Author, &comment.Body, &comment.Score,
			&comment.CreatedAt, &comment.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

// Count returns the total number of comments
func (r *commentRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments").Scan(&count)
	return count, err
}
